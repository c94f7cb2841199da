package flatfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jason-s-yu/topcard/internal/models"
)

// fieldCount is the number of fields per record:
// id, username, credentialHash, firstName, lastName, dateOfBirth, points, isAdmin.
const fieldCount = 8

// separator matches a run of commas and/or whitespace. Older files mixed the
// two, so both are accepted on read.
var separator = regexp.MustCompile(`[,\s]+`)

func splitLine(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), ",")
	if line == "" {
		return nil
	}
	return separator.Split(line, -1)
}

// encodeRecord renders p as one comma-delimited line (without newline). Text
// fields must be non-empty and free of separators, since the format has no
// quoting.
func encodeRecord(p *models.Player) (string, error) {
	text := []struct {
		name, value string
	}{
		{"username", p.Username},
		{"credential", p.Credential},
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
	}
	for _, f := range text {
		if f.value == "" || separator.MatchString(f.value) {
			return "", fmt.Errorf("%w: %s %q cannot be empty or contain commas or spaces", models.ErrInvalidField, f.name, f.value)
		}
	}
	return strings.Join([]string{
		strconv.Itoa(p.ID),
		p.Username,
		p.Credential,
		p.FirstName,
		p.LastName,
		p.DateOfBirth.Format(models.DateLayout),
		strconv.Itoa(p.Points),
		strconv.FormatBool(p.IsAdmin),
	}, ","), nil
}

// decodeRecord parses one line. Any deviation from the format is an error.
func decodeRecord(line string) (*models.Player, error) {
	parts := splitLine(line)
	if len(parts) != fieldCount {
		return nil, fmt.Errorf("malformed record: expected %d fields, got %d", fieldCount, len(parts))
	}

	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed record id %q: %w", parts[0], err)
	}
	dob, err := models.ParseDateOfBirth(parts[5])
	if err != nil {
		return nil, fmt.Errorf("malformed record date: %w", err)
	}
	points, err := strconv.Atoi(parts[6])
	if err != nil {
		return nil, fmt.Errorf("malformed record points %q: %w", parts[6], err)
	}
	isAdmin, err := strconv.ParseBool(parts[7])
	if err != nil {
		return nil, fmt.Errorf("malformed record admin flag %q: %w", parts[7], err)
	}

	p := models.NewPlayer(parts[1], parts[2], parts[3], parts[4], dob)
	p.ID = id
	p.Points = points
	p.IsAdmin = isAdmin
	return p, nil
}

// recordID extracts only the id of a line, for scans that do not need the
// rest of the record.
func recordID(line string) (int, error) {
	parts := splitLine(line)
	if len(parts) == 0 {
		return 0, fmt.Errorf("malformed record: empty line")
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed record id %q: %w", parts[0], err)
	}
	return id, nil
}
