// Package source loads the schedule part of a repository's configuration.
//
// Configuration is authored as JSON, as JSON with comments and trailing
// commas (".jsonc", ".json5"), or as YAML. JSON-like input is stripped with
// github.com/tidwall/jsonc; YAML is decoded with go.yaml.in/yaml/v3 and then
// re-encoded as JSON, so every format goes through the same JSON decoder and
// the same schedule.Entries coercion.
//
// Only "schedule" and "timezone" are read. Other keys are ignored, so a full
// repository configuration file can be passed as is.
//
//	cfg, err := source.LoadFile("renovate.json5")
//	if err != nil {
//		return err
//	}
//	allowed := schedule.IsScheduledNow(*cfg)
package source
