package config

// Environment variable names for CLI use.
const (
	EnvToken   = "CAPACITIES_API_TOKEN"
	EnvSpaceID = "CAPACITIES_SPACE_ID"
)

// Launcher hosts inject workflow settings as environment variables under
// their own names; accept those too so the filter works without extra
// configuration inside the workflow bundle.
var (
	tokenEnvNames   = []string{EnvToken, "api_token", "API_TOKEN", "capacities_api_token"}
	spaceIDEnvNames = []string{EnvSpaceID, "default_space_id", "DEFAULT_SPACE_ID"}
)

// TokenFromEnv returns the first API token found in the environment.
func TokenFromEnv(getenv func(string) string) string {
	for _, name := range tokenEnvNames {
		if v := getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// SpaceIDFromEnv returns the first default space id found in the environment.
func SpaceIDFromEnv(getenv func(string) string) string {
	for _, name := range spaceIDEnvNames {
		if v := getenv(name); v != "" {
			return v
		}
	}
	return ""
}
