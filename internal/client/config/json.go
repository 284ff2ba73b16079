package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/modtoolkit/internal/flagx"
	"github.com/dmitrijs2005/modtoolkit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "12s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	RollbackOnFailure bool           `json:"rollback_on_failure"`
	ProfileDBPath     string         `json:"profile_db_path"`
	DemoMode          bool           `json:"demo_mode"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when no
// path is given nothing is loaded. Read or unmarshal errors panic, matching
// the flag-parsing behavior.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	cfg.RollbackOnFailure = jc.RollbackOnFailure
	cfg.ProfileDBPath = jc.ProfileDBPath
	cfg.DemoMode = jc.DemoMode
}
