package surrealdb

const (
	usersTable    = "users"
	holdingsTable = "portfolios"
	countersTable = "counters"
)

var schema = []string{
	"DEFINE TABLE IF NOT EXISTS users SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS portfolios SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS counters SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS users_firebase_uid ON users FIELDS firebase_uid UNIQUE",
	"DEFINE INDEX IF NOT EXISTS portfolios_user_id ON portfolios FIELDS user_id",
}
