package storage

const schema = `
-- The 'decks' table groups pairs into study decks, optionally tied
-- to the source they were imported from.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    source_id TEXT,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE SET NULL
);

-- The 'pairs' table stores question/answer entries. The hash is the
-- normalized content hash used to deduplicate imports.
CREATE TABLE IF NOT EXISTS pairs (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    hash TEXT NOT NULL,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE,
    UNIQUE(deck_id, hash)
);

-- The 'associations' table holds one directional study record per
-- pair direction. NULL score means never studied; NULL due_at means
-- not scheduled.
CREATE TABLE IF NOT EXISTS associations (
    id TEXT PRIMARY KEY,
    pair_id TEXT NOT NULL,
    direction TEXT NOT NULL CHECK (direction IN ('AB', 'BA')),
    score INTEGER,
    due_at DATETIME,
    first_time INTEGER NOT NULL DEFAULT 1,

    FOREIGN KEY(pair_id) REFERENCES pairs(id) ON DELETE CASCADE,
    UNIQUE(pair_id, direction)
);

CREATE INDEX IF NOT EXISTS idx_associations_due_at ON associations(due_at);

-- The 'sources' table tracks import origins, either a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);
`
