package azdo

import (
	"encoding/base64"
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Credentials holds what the client needs to issue authorized requests.
type Credentials struct {
	Organization string
	PAT          string
}

// LoadCredentials reads the personal access token and organization from the
// environment, letting a .env file in the working directory fill gaps.
// A missing token is a setup failure; there is no interactive fallback.
func LoadCredentials(defaultOrg string) (*Credentials, error) {
	_ = godotenv.Load()

	pat := os.Getenv("DEVOPS_PAT")
	if pat == "" {
		return nil, errors.New("DEVOPS_PAT is not set (set it in the environment or a .env file)")
	}

	org := os.Getenv("DEVOPS_ORG")
	if org == "" {
		org = defaultOrg
	}
	if org == "" {
		return nil, errors.New("organization is not set (set it in config.toml or DEVOPS_ORG)")
	}

	return &Credentials{Organization: org, PAT: pat}, nil
}

// BasicAuthHeader builds the Authorization header value for a PAT. Azure
// DevOps expects basic auth with an empty user name.
func BasicAuthHeader(pat string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat))
}
