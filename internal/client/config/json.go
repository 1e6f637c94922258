package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/evently-client/internal/flagx"
	"github.com/dmitrijs2005/evently-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "empty" so a partial file only touches
// the keys it names.
type JsonConfig struct {
	APIBaseURL               *string         `json:"api_base_url"`
	ServerStatusURL          *string         `json:"server_status_url"`
	ConnectivityProbeURL     *string         `json:"connectivity_probe_url"`
	StatusProbeTimeout       *timex.Duration `json:"status_probe_timeout"`
	ConnectivityProbeTimeout *timex.Duration `json:"connectivity_probe_timeout"`
	OnlineCheckInterval      *timex.Duration `json:"online_check_interval"`
	StateDir                 *string         `json:"state_dir"`
	LogLevel                 *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config. Without the flag nothing is loaded. Read or unmarshal errors
// panic; the caller decides whether to recover.
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

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.ServerStatusURL, jc.ServerStatusURL)
	setString(&cfg.ConnectivityProbeURL, jc.ConnectivityProbeURL)
	setString(&cfg.StateDir, jc.StateDir)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.StatusProbeTimeout != nil {
		cfg.StatusProbeTimeout = jc.StatusProbeTimeout.Duration
	}
	if jc.ConnectivityProbeTimeout != nil {
		cfg.ConnectivityProbeTimeout = jc.ConnectivityProbeTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
