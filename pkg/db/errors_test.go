package db_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vastralane/storefront-backend/pkg/db"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_reviews_product_author"}

	if !db.IsUniqueViolation(err, "product_author") {
		t.Fatal("expected constraint match on postgres error")
	}
	if db.IsUniqueViolation(err, "user_product_size") {
		t.Fatal("unexpected match for unrelated constraint")
	}
	if db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation must not count as unique violation")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: reviews.product_id, reviews.author_id")

	if !db.IsUniqueViolation(err, "") {
		t.Fatal("expected match with no constraint filter")
	}
	if !db.IsUniqueViolation(err, "product_author") {
		t.Fatal("expected token match against sqlite column listing")
	}
	if db.IsUniqueViolation(err, "user_product_size") {
		t.Fatal("unexpected match for unrelated constraint tokens")
	}
	if db.IsUniqueViolation(errors.New("no such table: reviews"), "") {
		t.Fatal("non-unique error must not match")
	}
}
