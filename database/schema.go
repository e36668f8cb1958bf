package database

// Six primary tables plus two join tables. Foreign keys are enforced by
// the sqlite driver (the DSN must carry _foreign_keys=on; InitDB refuses
// to start otherwise).
//
// The user_id columns on boards, threads and posts deliberately carry no
// foreign key: authorship records outlive the author, so deleting a user
// leaves their content behind with a dangling owner id. Author joins are
// LEFT JOINs for the same reason.
const schema = `
CREATE TABLE IF NOT EXISTS images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	md5 TEXT NOT NULL UNIQUE,
	filepath TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	footer TEXT NOT NULL,
	privilege INTEGER NOT NULL DEFAULT 0,
	registered INTEGER NOT NULL,
	image_id INTEGER NOT NULL DEFAULT 1,
	FOREIGN KEY (image_id) REFERENCES images(id)
);
CREATE TABLE IF NOT EXISTS credentials (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	digest TEXT NOT NULL,
	user_id INTEGER NOT NULL UNIQUE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS boards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created INTEGER NOT NULL,
	user_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS threads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created INTEGER NOT NULL,
	sticky INTEGER NOT NULL DEFAULT 0,
	board_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	created INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	thread_id INTEGER NOT NULL,
	FOREIGN KEY (thread_id) REFERENCES threads(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS watches (
	user_id INTEGER NOT NULL,
	thread_id INTEGER NOT NULL,
	PRIMARY KEY (user_id, thread_id),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (thread_id) REFERENCES threads(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS unreads (
	user_id INTEGER NOT NULL,
	post_id INTEGER NOT NULL,
	PRIMARY KEY (user_id, post_id),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

-- --- INDEXES ---
CREATE INDEX IF NOT EXISTS idx_threads_board ON threads(board_id, sticky DESC, created ASC);
CREATE INDEX IF NOT EXISTS idx_posts_thread ON posts(thread_id, created ASC);
CREATE INDEX IF NOT EXISTS idx_watches_thread ON watches(thread_id);
CREATE INDEX IF NOT EXISTS idx_unreads_post ON unreads(post_id);
CREATE INDEX IF NOT EXISTS idx_users_image ON users(image_id);
`
