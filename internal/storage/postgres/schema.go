package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           BIGSERIAL PRIMARY KEY,
		firebase_uid TEXT NOT NULL UNIQUE,
		email        TEXT,
		phone        TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS portfolios (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		ticker     TEXT NOT NULL,
		quantity   DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolios_ticker ON portfolios (ticker)`,
}
