package main

import (
	"go/ast"
	"go/constant"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

const zapPath = "go.uber.org/zap"

// ConnStringLogAnalyzer находит поля zap, ключ которых указывает на строку подключения
// или токен доступа. Строки подключения содержат ключ аккаунта и не должны попадать в логи.
var ConnStringLogAnalyzer = &analysis.Analyzer{
	Name:     "cslog",
	Doc:      "reports zap fields that log storage connection strings or access tokens",
	Run:      runConnStringLogCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

// fieldConstructors - конструкторы полей zap, которые выводят значение как есть
var fieldConstructors = map[string]bool{
	"String":     true,
	"Strings":    true,
	"ByteString": true,
	"Stringer":   true,
	"Any":        true,
	"Reflect":    true,
}

var sensitiveKeys = map[string]bool{
	"cs":                true,
	"connection_string": true,
	"connectionstring":  true,
	"conn_str":          true,
	"account_key":       true,
	"accountkey":        true,
	"sas":               true,
	"sas_token":         true,
	"source_url":        true,
}

func runConnStringLogCheck(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(node ast.Node) {
		call := node.(*ast.CallExpr)
		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || fn.Pkg() == nil || fn.Pkg().Path() != zapPath || !fieldConstructors[fn.Name()] {
			return
		}
		if len(call.Args) == 0 {
			return
		}

		key := pass.TypesInfo.Types[call.Args[0]].Value
		if key == nil || key.Kind() != constant.String {
			return
		}
		if name := constant.StringVal(key); isSensitiveKey(name) {
			pass.Reportf(call.Pos(), "zap field %q may log a connection string or access token", name)
		}
	})
	return nil, nil
}

// isSensitiveKey сообщает, указывает ли ключ поля на секрет: source_cs, target-cs, ConnectionString
func isSensitiveKey(key string) bool {
	k := strings.ToLower(strings.ReplaceAll(key, "-", "_"))
	if sensitiveKeys[k] {
		return true
	}
	return strings.HasSuffix(k, "_cs") || strings.Contains(k, "connection_string")
}
