package postgres

// Schema is the contactsync DDL, applied by InitSchema. Contacts are keyed by
// their platform record ID; sync_runs tracks one row per sync invocation.
const Schema = `
CREATE TABLE IF NOT EXISTS contacts (
    id            TEXT PRIMARY KEY,
    first_name    TEXT,
    last_name     TEXT NOT NULL DEFAULT '',
    email         TEXT,
    phone         TEXT,
    account_id    TEXT,
    last_sync_run UUID,
    synced_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id          UUID PRIMARY KEY,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    succeeded   INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_contacts_last_sync_run ON contacts (last_sync_run);
`
