package store

import (
	"database/sql"
	"fmt"

	"github.com/zulu-club/zulubot/internal/models"
)

// scanTurns scans role/content rows into turns.
func scanTurns(rows *sql.Rows) ([]models.Turn, error) {
	var turns []models.Turn
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scan turn failed: %w", err)
		}
		turns = append(turns, models.Turn{Role: models.TurnRole(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows failed: %w", err)
	}
	return turns, nil
}

// scanSessionIDs scans session_id rows.
func scanSessionIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id failed: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows failed: %w", err)
	}
	return ids, nil
}

// reverseTurns flips a DESC-ordered query result back to append order.
func reverseTurns(turns []models.Turn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
