package sqlite

// schemaSQL creates the contacts table. It is safe to apply on every Attach.
const schemaSQL = `CREATE TABLE IF NOT EXISTS contacts (
    contact_id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    company TEXT NOT NULL DEFAULT '',
    job_title TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_full_name ON contacts(full_name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_contacts_category ON contacts(category);
`
