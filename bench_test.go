package gojexp_test

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/sandrolain/gojexp"
	"github.com/sandrolain/gojexp/pkg/evaluator"
)

var departments = []string{"Engineering", "Sales", "Marketing", "HR", "Finance"}

// dataset builds a document of n users.
func dataset(n int) map[string]any {
	users := make([]any, n)
	for i := range users {
		users[i] = map[string]any{
			"id":         i + 1,
			"name":       fmt.Sprintf("User%d", i+1),
			"age":        20 + i%40,
			"department": departments[i%5],
			"salary":     70000 + i*1000,
			"active":     i%2 == 0,
		}
	}
	return map[string]any{"users": users}
}

func benchContext(b *testing.B, n int) *gojexp.Context {
	b.Helper()
	c, err := evaluator.NewDocumentContext(dataset(n))
	if err != nil {
		b.Fatal(err)
	}
	return c
}

func benchEval(b *testing.B, src string, n int, opts ...gojexp.Option) {
	expr, err := gojexp.Build(src, opts...)
	if err != nil {
		b.Fatal(err)
	}
	c := benchContext(b, n)
	b.ResetTimer()
	for range b.N {
		if _, err := expr.Evaluate(c); err != nil {
			b.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Parser benchmarks
// ---------------------------------------------------------------------------

var parseCorpus = map[string]string{
	"SimplePath": `$.users[0].name`,
	"Filter":     `$.users[@{$.age > 30 && $.department == "Engineering"}].name`,
	"Functions":  `sum($.users[@{$.active}].salary) / count($.users[@{$.active}])`,
	"Chain":      `filter($.users[].salary, @{_ > 80000}).sort(@{b <=> a}).take(3)`,
	"Template":   "`${.users[0].name} earns ${.users[0].salary}`",
	"Arithmetic": `-2 ^ 4 + 3! * (1 + 2) % 5 - 7 / 2`,
}

func BenchmarkParse(b *testing.B) {
	for name, src := range parseCorpus {
		for _, optimize := range []bool{false, true} {
			b.Run(fmt.Sprintf("%s/optimize=%t", name, optimize), func(b *testing.B) {
				for range b.N {
					if _, err := gojexp.Compile(src, gojexp.WithOptimize(optimize)); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// ---------------------------------------------------------------------------
// Evaluation benchmarks
// ---------------------------------------------------------------------------

func BenchmarkEvalSimplePath(b *testing.B) {
	benchEval(b, `$.users[0].name`, 10)
}

func BenchmarkEvalFilter_Medium(b *testing.B) {
	benchEval(b, `$.users[@{$.age > 30}].name`, 10)
}

func BenchmarkEvalFilter_Large(b *testing.B) {
	benchEval(b, `$.users[@{$.age > 30}].name`, 1000)
}

func BenchmarkEvalAggregate(b *testing.B) {
	benchEval(b, `avg($.users[].salary)`, 1000)
}

func BenchmarkEvalBroadcast(b *testing.B) {
	benchEval(b, `$.users[].salary * 1.1 + 100`, 1000)
}

func BenchmarkEvalSort(b *testing.B) {
	benchEval(b, `sort($.users[].age, @{a <=> b})`, 100)
}

func BenchmarkEvalCached(b *testing.B) {
	cache := gojexp.NewCache(16)
	c := benchContext(b, 10)
	b.ResetTimer()
	for range b.N {
		if _, err := gojexp.Eval(`sum($.users[].age)`, c, gojexp.WithCache(cache)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvalAsync(b *testing.B) {
	expr, err := gojexp.Build(`x * 2 + sum($.users[].age)`)
	if err != nil {
		b.Fatal(err)
	}
	base := benchContext(b, 10)
	b.ResetTimer()
	for range b.N {
		var g errgroup.Group
		g.SetLimit(8)
		futures := make([]*gojexp.Future, 64)
		for i := range futures {
			c := base.Fork()
			if err := c.UpdateVariable("x", i); err != nil {
				b.Fatal(err)
			}
			futures[i] = expr.EvaluateAsync(&g, c)
		}
		if err := g.Wait(); err != nil {
			b.Fatal(err)
		}
	}
}
