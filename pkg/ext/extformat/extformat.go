// Package extformat converts between values and text formats: CSV, and
// the JSON, YAML and TOML documents understood by package document.
package extformat

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/sandrolain/gojexp/pkg/document"
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all format function definitions.
func All() []functions.Def {
	return []functions.Def{
		ParseCSV(),
		ToCSV(),
		ParseDocument(),
		ToYAML(),
		ToTOML(),
	}
}

// ParseCSV returns the definition for csv(str [, separator]). The first
// record holds the column names; every following record becomes a map of
// strings. Missing trailing fields are empty strings.
func ParseCSV() functions.Def {
	return functions.Def{
		Name: "csv", Required: 1, Optional: 1,
		Doc: "vector of maps from CSV text with a header row",
		Fn: func(args []types.Value) (types.Value, error) {
			src, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			r := csv.NewReader(strings.NewReader(src))
			r.TrimLeadingSpace = true
			r.FieldsPerRecord = -1
			if len(args) > 1 {
				sep, err := args[1].AsString()
				if err != nil {
					return types.Null, err
				}
				if len([]rune(sep)) != 1 {
					return types.Null, types.EvalErrorf("csv: separator must be one character")
				}
				r.Comma = []rune(sep)[0]
			}
			records, err := r.ReadAll()
			if err != nil {
				return types.Null, types.EvalErrorf("csv: invalid input").WithCause(err)
			}
			if len(records) == 0 {
				return types.Vec(nil), nil
			}
			header := records[0]
			rows := make([]types.Value, 0, len(records)-1)
			for _, rec := range records[1:] {
				row := make(map[string]types.Value, len(header))
				for i, h := range header {
					field := ""
					if i < len(rec) {
						field = rec[i]
					}
					row[h] = types.Str(field)
				}
				rows = append(rows, types.Object(row))
			}
			return types.Vec(rows), nil
		},
	}
}

// ToCSV returns the definition for toCSV(rows [, columns]). Without
// columns the sorted keys of the first row are used. Strings are written
// bare, other values in their display form, null as an empty field.
func ToCSV() functions.Def {
	return functions.Def{
		Name: "toCSV", Required: 1, Optional: 1,
		Doc: "CSV text with a header row from a vector of maps",
		Fn: func(args []types.Value) (types.Value, error) {
			rows, err := args[0].AsVector()
			if err != nil {
				return types.Null, err
			}
			var columns []string
			switch {
			case len(args) > 1:
				cols, err := args[1].AsVector()
				if err != nil {
					return types.Null, err
				}
				for _, c := range cols {
					s, err := c.AsString()
					if err != nil {
						return types.Null, err
					}
					columns = append(columns, s)
				}
			case len(rows) > 0:
				m, err := rows[0].AsMap()
				if err != nil {
					return types.Null, err
				}
				columns = types.SortedKeys(m)
			}

			var buf bytes.Buffer
			w := csv.NewWriter(&buf)
			if err := w.Write(columns); err != nil {
				return types.Null, err
			}
			record := make([]string, len(columns))
			for _, row := range rows {
				m, err := row.AsMap()
				if err != nil {
					return types.Null, err
				}
				for i, c := range columns {
					record[i] = field(m[c])
				}
				if err := w.Write(record); err != nil {
					return types.Null, err
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return types.Null, err
			}
			return types.Str(buf.String()), nil
		},
	}
}

func field(v types.Value) string {
	if v.IsNull() {
		return ""
	}
	if s, err := v.AsString(); err == nil {
		return s
	}
	return v.String()
}

// ParseDocument returns the definition for parseDocument(str [, format]).
// format is json, yaml, toml or auto (the default).
func ParseDocument() functions.Def {
	return functions.Def{
		Name: "parseDocument", Required: 1, Optional: 1, Scalable: true,
		Doc: "value decoded from JSON, YAML or TOML text",
		Fn: func(args []types.Value) (types.Value, error) {
			src, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			f := document.Auto
			if len(args) > 1 {
				name, err := args[1].AsString()
				if err != nil {
					return types.Null, err
				}
				if f, err = document.ParseFormat(name); err != nil {
					return types.Null, types.EvalErrorf("parseDocument: %v", err)
				}
			}
			raw, err := document.Parse([]byte(src), f)
			if err != nil {
				return types.Null, types.EvalErrorf("parseDocument: invalid %s input", f).WithCause(err)
			}
			return types.Of(raw)
		},
	}
}

// ToYAML returns the definition for toYAML(v).
func ToYAML() functions.Def {
	return functions.Def{
		Name: "toYAML", Required: 1,
		Doc: "YAML text of a value",
		Fn: func(args []types.Value) (types.Value, error) {
			if args[0].IsExpression() {
				return types.Null, types.EvalErrorf("toYAML: cannot encode %s", args[0].Kind())
			}
			out, err := yaml.Marshal(args[0].Raw())
			if err != nil {
				return types.Null, types.EvalErrorf("toYAML: encoding failed").WithCause(err)
			}
			return types.Str(string(out)), nil
		},
	}
}

// ToTOML returns the definition for toTOML(m). Only maps encode to TOML.
func ToTOML() functions.Def {
	return functions.Def{
		Name: "toTOML", Required: 1,
		Doc: "TOML text of a map",
		Fn: func(args []types.Value) (types.Value, error) {
			if !args[0].IsMap() {
				return types.Null, types.EvalErrorf("toTOML: Map required, got %s", args[0].Kind())
			}
			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(args[0].Raw()); err != nil {
				return types.Null, types.EvalErrorf("toTOML: encoding failed").WithCause(err)
			}
			return types.Str(buf.String()), nil
		},
	}
}
