package database

const DB_NAME = "db.db"

const SCHEMA_VERSION = 1

const DB_SCHEMA = `CREATE TABLE IF NOT EXISTS Version (
	ID integer PRIMARY KEY AUTOINCREMENT,
	Name text,
	Version integer
);

CREATE TABLE IF NOT EXISTS Options (
	Name text PRIMARY KEY,
	Value text NOT NULL DEFAULT '',
	UpdatedAt integer NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Sessions (
	ID integer PRIMARY KEY AUTOINCREMENT,
	SessionKey text NOT NULL UNIQUE,
	CustomerID integer NOT NULL DEFAULT 0,
	Value text NOT NULL DEFAULT '{}',
	Expiry integer NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Actions (
	ID text PRIMARY KEY,
	Hook text NOT NULL,
	Args text NOT NULL DEFAULT '[]',
	GroupName text NOT NULL DEFAULT '',
	ScheduledAt integer NOT NULL,
	Status text NOT NULL,
	Attempts integer NOT NULL DEFAULT 0,
	Message text NOT NULL DEFAULT '',
	CreatedAt integer NOT NULL,
	UpdatedAt integer NOT NULL
);

CREATE INDEX IF NOT EXISTS ActionsDue ON Actions (Status, ScheduledAt);
`
