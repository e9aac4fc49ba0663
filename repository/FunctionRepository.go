package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// GenerateRandomCode issues a vendor code when the caller does not supply one:
// two letters followed by five digits.
func GenerateRandomCode() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	prefix := string(letters[rng.Intn(len(letters))]) + string(letters[rng.Intn(len(letters))])
	number := rng.Intn(90000) + 10000

	return fmt.Sprintf("%s%d", prefix, number)
}

// GeneratePONumber builds the next PO number in the "PO-<year>-<seq>" format,
// continuing from the highest number already issued this year.
func GeneratePONumber(db *sql.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PO-%d-", year)

	var last sql.NullString
	err := db.QueryRow(`SELECT MAX(po_no) FROM po WHERE po_no LIKE $1`, prefix+"%").Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to fetch last PO number: %w", err)
	}

	seq := 1
	if last.Valid && strings.HasPrefix(last.String, prefix) {
		n, err := strconv.Atoi(strings.TrimPrefix(last.String, prefix))
		if err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// GeneratePCLNumber builds the next comparison list number ("PCL-<year>-<seq>").
func GeneratePCLNumber(db *sql.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PCL-%d-", year)

	var last sql.NullString
	err := db.QueryRow(`SELECT MAX(pcl_no) FROM pcl WHERE pcl_no LIKE $1`, prefix+"%").Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to fetch last PCL number: %w", err)
	}

	seq := 1
	if last.Valid && strings.HasPrefix(last.String, prefix) {
		n, err := strconv.Atoi(strings.TrimPrefix(last.String, prefix))
		if err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
