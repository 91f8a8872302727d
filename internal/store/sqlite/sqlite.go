// Package sqlite is a durable, pluggable implementation of store.Store
// over github.com/mattn/go-sqlite3, mirroring the shape of the teacher's
// SQLiteStore (single-connection pool, WAL mode, schema applied on open)
// but against the social-graph schema: users, friendships, friend_requests
// and blocks instead of chat rooms/messages.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brnhrs/warhorse-server/internal/store"
)

// Store implements store.Store for SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	account_name       TEXT NOT NULL,
	account_name_lower TEXT NOT NULL UNIQUE,
	display_name       TEXT NOT NULL,
	display_name_lower TEXT NOT NULL,
	email              TEXT NOT NULL UNIQUE,
	language           INTEGER NOT NULL DEFAULT 0,
	password_hash      TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS friendships (
	user_id   INTEGER NOT NULL,
	friend_id INTEGER NOT NULL,
	PRIMARY KEY (user_id, friend_id)
);

CREATE TABLE IF NOT EXISTS friend_requests (
	from_user INTEGER NOT NULL,
	to_user   INTEGER NOT NULL,
	PRIMARY KEY (from_user, to_user)
);

CREATE TABLE IF NOT EXISTS blocks (
	blocker INTEGER NOT NULL,
	blocked INTEGER NOT NULL,
	PRIMARY KEY (blocker, blocked)
);
`

// New opens (creating if necessary) a SQLite database at dbPath and
// applies the schema. dbPath is the path to the database file.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; the social graph's
	// write volume is low enough that serializing through one conn is
	// not a bottleneck in practice.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UserExists(id store.UserID) bool {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM users WHERE id = ?`, id).Scan(&exists)
	return err == nil
}

func (s *Store) UsersInsert(reg store.Registration) store.UserID {
	accountLower := strings.ToLower(reg.AccountName)
	emailLower := strings.ToLower(reg.Email)

	result, err := s.db.Exec(
		`INSERT INTO users (account_name, account_name_lower, display_name, display_name_lower, email, language, password_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.AccountName, accountLower, reg.DisplayName, strings.ToLower(reg.DisplayName), emailLower, int(reg.Language), reg.PasswordHash,
	)
	if err != nil {
		// Callers are expected to pre-check uniqueness via UsersGetByAccountName/
		// UsersGetByEmail; a constraint violation here indicates a caller bug.
		panic(fmt.Sprintf("users insert: %v", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		panic(fmt.Sprintf("users insert: last insert id: %v", err))
	}
	return store.UserID(fmt.Sprintf("%d", id))
}

func scanUser(row *sql.Row) (store.User, bool) {
	var u store.User
	var lang int
	var created time.Time
	err := row.Scan(&u.ID, &u.AccountName, &u.AccountNameLower, &u.DisplayName, &u.DisplayNameLower, &u.Email, &lang, &u.PasswordHash, &created)
	if err != nil {
		return store.User{}, false
	}
	u.Language = store.Language(lang)
	u.CreatedAt = created
	return u, true
}

const userCols = `id, account_name, account_name_lower, display_name, display_name_lower, email, language, password_hash, created_at`

func (s *Store) UsersGet(id store.UserID) (store.User, bool) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) UsersGetByAccountName(name string) (store.User, bool) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE account_name_lower = ?`, strings.ToLower(name))
	return scanUser(row)
}

func (s *Store) UsersGetByEmail(email string) (store.User, bool) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, strings.ToLower(email))
	return scanUser(row)
}

func (s *Store) FriendsAdd(a, b store.UserID) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO friendships (user_id, friend_id) VALUES (?, ?)`, a, b); err != nil {
		panic(fmt.Sprintf("friends add: %v", err))
	}
}

func (s *Store) FriendsRemove(a, b store.UserID) {
	if _, err := s.db.Exec(`DELETE FROM friendships WHERE user_id = ? AND friend_id = ?`, a, b); err != nil {
		panic(fmt.Sprintf("friends remove: %v", err))
	}
}

func (s *Store) FriendsGet(user store.UserID) []store.UserID {
	return queryIDs(s.db, `SELECT friend_id FROM friendships WHERE user_id = ?`, user)
}

func (s *Store) FriendRequestsInsert(from, to store.UserID) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO friend_requests (from_user, to_user) VALUES (?, ?)`, from, to); err != nil {
		panic(fmt.Sprintf("friend requests insert: %v", err))
	}
}

func (s *Store) FriendRequestsRemove(from, to store.UserID) {
	if _, err := s.db.Exec(`DELETE FROM friend_requests WHERE from_user = ? AND to_user = ?`, from, to); err != nil {
		panic(fmt.Sprintf("friend requests remove: %v", err))
	}
}

func (s *Store) FriendRequestExists(from, to store.UserID) bool {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM friend_requests WHERE from_user = ? AND to_user = ?`, from, to).Scan(&exists)
	return err == nil
}

func (s *Store) FriendRequestsIncoming(user store.UserID) []store.UserID {
	return queryIDs(s.db, `SELECT from_user FROM friend_requests WHERE to_user = ?`, user)
}

func (s *Store) FriendRequestsOutgoing(user store.UserID) []store.UserID {
	return queryIDs(s.db, `SELECT to_user FROM friend_requests WHERE from_user = ?`, user)
}

func (s *Store) BlocksInsert(blocker, blocked store.UserID) {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO blocks (blocker, blocked) VALUES (?, ?)`, blocker, blocked); err != nil {
		panic(fmt.Sprintf("blocks insert: %v", err))
	}
}

func (s *Store) BlocksRemove(blocker, blocked store.UserID) {
	if _, err := s.db.Exec(`DELETE FROM blocks WHERE blocker = ? AND blocked = ?`, blocker, blocked); err != nil {
		panic(fmt.Sprintf("blocks remove: %v", err))
	}
}

func (s *Store) BlocksOutgoing(user store.UserID) []store.UserID {
	return queryIDs(s.db, `SELECT blocked FROM blocks WHERE blocker = ?`, user)
}

func (s *Store) IsBlocked(blocker, blocked store.UserID) bool {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM blocks WHERE blocker = ? AND blocked = ?`, blocker, blocked).Scan(&exists)
	return err == nil
}

func queryIDs(db *sql.DB, query string, arg store.UserID) []store.UserID {
	rows, err := db.Query(query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		panic(fmt.Sprintf("query ids: %v", err))
	}
	defer rows.Close()

	var out []store.UserID
	for rows.Next() {
		var id store.UserID
		if err := rows.Scan(&id); err != nil {
			panic(fmt.Sprintf("scan id: %v", err))
		}
		out = append(out, id)
	}
	return out
}
