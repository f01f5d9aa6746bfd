// Команда staticlint запускает набор анализаторов для кода сервиса:
// проходы golang.org/x/tools, staticcheck, go-critic, errcheck
// и собственные проверки osexit и cslog.
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"github.com/go-critic/go-critic/checkers/analyzer"
	"github.com/kisielk/errcheck/errcheck"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// skippedStyleChecks требуют англоязычных doc комментариев, начинающихся с имени
var skippedStyleChecks = map[string]bool{
	"ST1000": true, // комментарий пакета
	"ST1020": true, // комментарий экспортируемой функции
	"ST1021": true, // комментарий экспортируемого типа
	"ST1022": true, // комментарий экспортируемой переменной
}

func main() {
	multichecker.Main(analyzers()...)
}

// analyzers собирает список проверок
func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		OsExitAnalyzer,
		ConnStringLogAnalyzer,

		// Ошибки, характерные для HTTP обработчиков, errgroup и работы с контекстом
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		loopclosure.Analyzer,
		copylock.Analyzer,
		atomic.Analyzer,
		errorsas.Analyzer,
		nilness.Analyzer,
		shadow.Analyzer,

		// JSON теги моделей и журнала
		structtag.Analyzer,
		unmarshal.Analyzer,

		assign.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		printf.Analyzer,
		tests.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,

		analyzer.Analyzer, // go-critic
		errcheck.Analyzer,
	}

	checks = appendLint(checks, staticcheck.Analyzers)
	checks = appendLint(checks, simple.Analyzers)
	return appendLint(checks, stylecheck.Analyzers)
}

func appendLint(checks []*analysis.Analyzer, set []*lint.Analyzer) []*analysis.Analyzer {
	for _, v := range set {
		if skippedStyleChecks[v.Analyzer.Name] {
			continue
		}
		checks = append(checks, v.Analyzer)
	}
	return checks
}
