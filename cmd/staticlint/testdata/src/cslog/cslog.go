package cslog

import "go.uber.org/zap"

const targetKey = "target_cs"

func fields(cs, container string) []zap.Field {
	return []zap.Field{
		zap.String("source_cs", cs),               // want `zap field "source_cs" may log a connection string or access token`
		zap.String(targetKey, cs),                 // want `zap field "target_cs" may log a connection string or access token`
		zap.Any("ConnectionString", cs),           // want `zap field "ConnectionString" may log a connection string or access token`
		zap.Strings("sas", []string{cs}),          // want `zap field "sas" may log a connection string or access token`
		zap.String("source_container", container), // ok
		zap.String("account", container),          // ok
		zap.Int("cs", len(cs)),                    // ok
	}
}
