package model

type AuthScheme string

const (
	AuthSchemeBearer AuthScheme = "bearer"
	// AuthSchemeBasic sends the token as the basic-auth user with "X" as password.
	AuthSchemeBasic AuthScheme = "basic"
)

// Credential is resolved once per run and only read afterwards.
type Credential struct {
	Name        string     `yaml:"name" json:"name"`
	Host        string     `yaml:"host" json:"host"`
	AccessToken string     `yaml:"accessToken" json:"accessToken"`
	Scheme      AuthScheme `yaml:"scheme" json:"scheme"`
}

func (c Credential) IsZero() bool {
	return c.Host == "" && c.AccessToken == ""
}
