package repos

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"basket/internal/domain"
)

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// Every new connection to :memory: is a separate empty database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog if DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Demo shoppers (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// withPragmas turns on foreign keys for every pooled connection, not just
// the one that ran the schema.
func withPragmas(dsn string) string {
	if dsn == ":memory:" {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// InTx runs fn inside a transaction, committing only if fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func newID() string { return uuid.NewString() }

func now() string { return time.Now().UTC().Format(domain.TimeLayout) }

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  original_price NUMERIC NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  image TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  unit TEXT NOT NULL CHECK (unit IN ('kg','g','l','ml','piece','dozen','pack')),
  discount NUMERIC NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured);

-- Shoppers
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Back office accounts
CREATE TABLE IF NOT EXISTS admins(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('admin','super_admin','god')),
  permissions TEXT NOT NULL DEFAULT '[]',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_email ON admins(LOWER(email));

-- Orders (line items are snapshots, no reference back to products)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  shipping_address TEXT NOT NULL DEFAULT '{}',
  payment_method TEXT NOT NULL DEFAULT 'cod',
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','confirmed','processing','shipped','delivered','cancelled')),
  order_date TEXT NOT NULL,
  delivered_date TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  image TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (order_id, position)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products")

	ts := now()
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	tx.MustExec(`INSERT INTO categories(id,name,description,image,is_active,created_at) VALUES
	  ('fruits-vegetables','Fruits & Vegetables','Fresh produce','categories/fruits.jpg',1,?),
	  ('dairy-eggs','Dairy & Eggs','Milk, cheese and eggs','categories/dairy.jpg',1,?),
	  ('beverages','Beverages','Juices and soft drinks','categories/beverages.jpg',1,?)`, ts, ts, ts)

	tx.MustExec(`INSERT INTO products(id,name,description,price,original_price,category_id,image,stock,unit,discount,is_featured,created_at) VALUES
	  ('banana-001','Banana','Ripe yellow bananas',40,50,'fruits-vegetables','products/banana.jpg',120,'dozen',20,1,?),
	  ('tomato-001','Tomato','Farm fresh tomatoes',30,0,'fruits-vegetables','products/tomato.jpg',80,'kg',0,0,?),
	  ('milk-001','Toned Milk','Pasteurised toned milk',28,30,'dairy-eggs','products/milk.jpg',60,'l',6,1,?),
	  ('eggs-001','Brown Eggs','Free range brown eggs',90,0,'dairy-eggs','products/eggs.jpg',3,'dozen',0,0,?),
	  ('juice-001','Orange Juice','Cold pressed orange juice',120,140,'beverages','products/juice.jpg',25,'l',14,1,?)`,
		ts, ts, ts, ts, ts)

	return tx.Commit()
}

// seedUsers ensures the demo shoppers exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Phone, Hash string
	}
	mk := func(id, email, name, phone, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
		return u{ID: id, Email: email, Name: name, Phone: phone, Hash: string(h)}
	}

	users := []u{
		mk("u-alice", "alice@basket.test", "Alice", "9000000001", "Passw0rd!"),
		mk("u-bob", "bob@basket.test", "Bob", "9000000002", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,phone,address,created_at)
			VALUES(?,?,?,?,?,?,?)
			ON CONFLICT(id) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Phone, `{"street":"12 Market Road","city":"Pune","state":"MH","pincode":"411001"}`, now()); err != nil {
			return err
		}
	}

	return tx.Commit()
}
