package ai

import "os"

// CredentialEnv maps each provider to the environment variable holding its
// API key.
var CredentialEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
}

// CheckCredentials reports, per provider, whether an API key is present in
// the environment. Unknown providers report false.
func CheckCredentials(providers ...string) map[string]bool {
	result := make(map[string]bool, len(providers))
	for _, p := range providers {
		env, ok := CredentialEnv[p]
		result[p] = ok && os.Getenv(env) != ""
	}
	return result
}
