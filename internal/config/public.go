package config

// PublicConfig is the runtime configuration a browser may see.
type PublicConfig struct {
	AuthDisabled bool   `json:"authDisabled"`
	AppBasename  string `json:"appBasename"`
	KcBaseURL    string `json:"kcBaseUrl"`
	KcRealm      string `json:"kcRealm"`
	KcClientID   string `json:"kcClientId"`
}

func (c mainConfig) Public() PublicConfig {
	return PublicConfig{
		AuthDisabled: c.GetAuthDisabled(),
		AppBasename:  c.GetAppBasename(),
		KcBaseURL:    c.GetKeycloakBaseURL(),
		KcRealm:      c.GetKeycloakRealm(),
		KcClientID:   c.GetKeycloakClientID(),
	}
}
