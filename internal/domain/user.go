package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Address is stored as a JSON document column.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.Pincode == ""
}

func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("address: unsupported column type %T", src)
	}
	if len(raw) == 0 {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(raw, a)
}

type User struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Email     string  `db:"email" json:"email"`
	Hash      string  `db:"password_hash" json:"-"`
	Phone     string  `db:"phone" json:"phone"`
	Address   Address `db:"address" json:"address"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
}

type Admin struct {
	ID          string        `db:"id" json:"id"`
	Username    string        `db:"username" json:"username"`
	Email       string        `db:"email" json:"email"`
	Hash        string        `db:"password_hash" json:"-"`
	Role        Role          `db:"role" json:"role"`
	Permissions CapabilitySet `db:"permissions" json:"permissions"`
	Active      bool          `db:"is_active" json:"isActive"`
	CreatedAt   string        `db:"created_at" json:"createdAt"`
}
