package config

import (
	"encoding/json"
	"os"

	"github.com/mlevkov/pagekeeper/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Values are
// copied into the runtime Config only when present, so the JSON file may
// specify any subset of fields.
type JsonConfig struct {
	APIBaseURL  string `json:"api_base_url"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Branch      string `json:"branch"`
	AppID       string `json:"app_id"`
	KeyPath     string `json:"key_path"`
	StateDBPath string `json:"state_db_path"`
}

// parseJson overlays Config with values loaded from a JSON file resolved
// via the -c/-config flags. When no file is given, nothing happens.
// Read or unmarshal errors panic (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later
// stages override earlier ones.
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

	overlay(&cfg.APIBaseURL, jc.APIBaseURL)
	overlay(&cfg.Owner, jc.Owner)
	overlay(&cfg.Repo, jc.Repo)
	overlay(&cfg.Branch, jc.Branch)
	overlay(&cfg.AppID, jc.AppID)
	overlay(&cfg.KeyPath, jc.KeyPath)
	overlay(&cfg.StateDBPath, jc.StateDBPath)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
