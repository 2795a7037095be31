package db

// PostgresSchema is a single quotes table filtered by source.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	source TEXT             NOT NULL,
	ts     TIMESTAMPTZ      NOT NULL,
	open   DOUBLE PRECISION,
	high   DOUBLE PRECISION,
	low    DOUBLE PRECISION,
	close  DOUBLE PRECISION NOT NULL,
	volume DOUBLE PRECISION,
	PRIMARY KEY (source, ts)
)`

// SQLiteSchema mirrors PostgresSchema; ts holds unix seconds.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	source TEXT    NOT NULL,
	ts     INTEGER NOT NULL,
	open   REAL,
	high   REAL,
	low    REAL,
	close  REAL    NOT NULL,
	volume REAL,
	PRIMARY KEY (source, ts)
)`
