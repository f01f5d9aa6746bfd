package zap

type Field struct{}

func String(key, val string) Field       { return Field{} }
func Strings(key string, v []string) Field { return Field{} }
func Any(key string, v any) Field        { return Field{} }
func Int(key string, v int) Field        { return Field{} }
