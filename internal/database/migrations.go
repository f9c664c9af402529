package database

// migration is one schema step. Its version is its position in migrations,
// starting at 1; released steps are never edited, only appended to.
type migration struct {
	name       string
	statements []string
}

var migrations = []migration{
	{
		name: "players",
		statements: []string{
			`CREATE TABLE players (
				id           TEXT PRIMARY KEY,
				token        TEXT UNIQUE NOT NULL,
				name         TEXT NOT NULL,
				created_at   DATETIME NOT NULL,
				last_seen_at DATETIME NOT NULL
			)`,
		},
	},
	{
		name: "games_and_seats",
		statements: []string{
			`CREATE TABLE games (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				status      TEXT NOT NULL DEFAULT 'waiting',
				host_id     TEXT NOT NULL REFERENCES players(id),
				settings    TEXT NOT NULL,
				seat_limit  INTEGER NOT NULL,
				created_at  DATETIME NOT NULL,
				started_at  DATETIME,
				finished_at DATETIME
			)`,
			`CREATE INDEX games_by_status ON games(status, created_at)`,
			// seat is the player's position in the turn order.
			`CREATE TABLE seats (
				game_id   TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
				player_id TEXT NOT NULL REFERENCES players(id),
				seat      INTEGER NOT NULL,
				color     TEXT NOT NULL,
				joined_at DATETIME NOT NULL,
				PRIMARY KEY (game_id, player_id),
				UNIQUE (game_id, seat)
			)`,
		},
	},
	{
		name: "snapshots_and_moves",
		statements: []string{
			`CREATE TABLE snapshots (
				game_id        TEXT PRIMARY KEY REFERENCES games(id) ON DELETE CASCADE,
				snapshot       TEXT NOT NULL,
				turn_player_id TEXT NOT NULL DEFAULT '',
				round          INTEGER NOT NULL DEFAULT 1,
				saved_at       DATETIME NOT NULL
			)`,
			`CREATE TABLE moves (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id    TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
				player_id  TEXT NOT NULL DEFAULT '',
				kind       TEXT NOT NULL,
				request    TEXT NOT NULL,
				outcome    TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX moves_by_game ON moves(game_id, id)`,
		},
	},
	{
		name: "events",
		statements: []string{
			`CREATE TABLE events (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				game_id     TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
				round       INTEGER NOT NULL DEFAULT 0,
				player_id   TEXT NOT NULL DEFAULT '',
				player_name TEXT NOT NULL DEFAULT '',
				kind        TEXT NOT NULL,
				message     TEXT NOT NULL,
				created_at  DATETIME NOT NULL
			)`,
			`CREATE INDEX events_by_game ON events(game_id, id)`,
		},
	},
}
