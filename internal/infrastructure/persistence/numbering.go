package persistence

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint failure
const pgUniqueViolation = "23505"

// highestSequence returns the largest trailing sequence of numbers shaped
// like PREFIX-...-0042. Numbers without a numeric suffix are ignored.
func highestSequence(numbers []string) int {
	highest := 0
	for _, n := range numbers {
		idx := strings.LastIndexByte(n, '-')
		if idx < 0 {
			continue
		}
		seq, err := strconv.Atoi(n[idx+1:])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest
}

// isUniqueViolation reports whether err is a unique constraint failure,
// either translated by the dialector or raw from PostgreSQL. Two requests
// allocating the same next number end up here.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
