package crm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var ErrCustomerNotFound = errors.New("customer not found")

// IdentifierKind names the kind of value a caller supplied to identify
// themselves. Lookups try kinds in the order id, phone, email, name.
type IdentifierKind string

const (
	KindID    IdentifierKind = "id"
	KindPhone IdentifierKind = "phone"
	KindEmail IdentifierKind = "email"
	KindName  IdentifierKind = "name"
)

// Customer is the CRM record for a verified caller.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c" json:"-"`

	ID                 string   `bun:"customer_id,pk" json:"customer_id"`
	Name               string   `bun:"name" json:"name"`
	Phone              string   `bun:"phone" json:"phone"`
	Email              string   `bun:"email" json:"email"`
	PolicyNumbers      []string `bun:"policy_numbers,array" json:"policy_numbers,omitempty"`
	DelinquentPolicies []string `bun:"delinquent_policies,array" json:"delinquent_policies,omitempty"`
}

// HoldsPolicy reports whether the policy number belongs to this customer.
func (c *Customer) HoldsPolicy(policyNumber string) bool {
	for _, p := range c.PolicyNumbers {
		if p == policyNumber {
			return true
		}
	}
	return false
}

// PolicyDelinquent reports whether the policy is flagged delinquent,
// which blocks self-service renewal.
func (c *Customer) PolicyDelinquent(policyNumber string) bool {
	for _, p := range c.DelinquentPolicies {
		if p == policyNumber {
			return true
		}
	}
	return false
}

// Directory is the CRM collaborator contract.
type Directory interface {
	FindBy(ctx context.Context, kind IdentifierKind, value string) (*Customer, error)
}

// LookupOrder returns the identifier kinds worth trying for an ambiguous
// caller-supplied value, in id, phone, email, name priority order. Kinds
// whose shape cannot match the value are skipped; name is always last.
func LookupOrder(identifier string) []IdentifierKind {
	identifier = strings.TrimSpace(identifier)

	kinds := make([]IdentifierKind, 0, 4)
	if identifier != "" && !strings.ContainsAny(identifier, " @") {
		kinds = append(kinds, KindID)
	}
	if phoneShaped(identifier) {
		kinds = append(kinds, KindPhone)
	}
	if strings.Contains(identifier, "@") {
		kinds = append(kinds, KindEmail)
	}
	return append(kinds, KindName)
}

func phoneShaped(identifier string) bool {
	digits := 0
	for _, r := range identifier {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7
}

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// PostgresDirectory is the bun-backed Directory over a customers table.
type PostgresDirectory struct {
	db      *bun.DB
	timeout time.Duration
}

func NewPostgresDirectory(cfg PostgresConfig) (*PostgresDirectory, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("crm dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresDirectory{
		db:      db,
		timeout: timeout,
	}, nil
}

func (d *PostgresDirectory) FindBy(ctx context.Context, kind IdentifierKind, value string) (*Customer, error) {
	column, err := columnFor(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	customer := new(Customer)
	query := d.db.NewSelect().Model(customer).Limit(1)
	if kind == KindName {
		query = query.Where("lower(?TableAlias.name) = lower(?)", value)
	} else {
		query = query.Where("?TableAlias."+column+" = ?", value)
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s=%q", ErrCustomerNotFound, kind, value)
		}
		return nil, fmt.Errorf("crm lookup %s: %w", kind, err)
	}
	return customer, nil
}

func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}

func columnFor(kind IdentifierKind) (string, error) {
	switch kind {
	case KindID:
		return "customer_id", nil
	case KindPhone:
		return "phone", nil
	case KindEmail:
		return "email", nil
	case KindName:
		return "name", nil
	default:
		return "", fmt.Errorf("unsupported identifier kind %q", kind)
	}
}
