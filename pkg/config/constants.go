package config

const (
	EnvPrefix = "CAMPUSMARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CAMPUSMARKET_DB_DSN"
	EnvDBHost = "CAMPUSMARKET_DB_HOST"
	EnvDBUser = "CAMPUSMARKET_DB_USER"
	EnvDBName = "CAMPUSMARKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
