package gps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
)

var (
	errNotPosition = errors.New("not a position sentence")
	errNoFix       = errors.New("sentence carries no fix")
)

// ParseSentence extracts a position from a GGA or RMC sentence of any talker (GP, GN, GL...).
func ParseSentence(line string) (models.Position, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") || len(line) < 7 {
		return models.Position{}, errNotPosition
	}
	if i := strings.IndexByte(line, '*'); i > 0 {
		if err := verifyChecksum(line[1:i], line[i+1:]); err != nil {
			return models.Position{}, err
		}
		line = line[:i]
	}

	parts := strings.Split(line, ",")
	if len(parts[0]) != 6 {
		return models.Position{}, errNotPosition
	}
	switch parts[0][3:] {
	case "GGA":
		// $xxGGA,time,lat,N,lon,E,quality,...
		if len(parts) < 7 {
			return models.Position{}, fmt.Errorf("GGA: %d fields", len(parts))
		}
		if parts[6] == "" || parts[6] == "0" {
			return models.Position{}, errNoFix
		}
		return position(parts[2], parts[3], parts[4], parts[5])
	case "RMC":
		// $xxRMC,time,status,lat,N,lon,E,...
		if len(parts) < 7 {
			return models.Position{}, fmt.Errorf("RMC: %d fields", len(parts))
		}
		if parts[2] != "A" {
			return models.Position{}, errNoFix
		}
		return position(parts[3], parts[4], parts[5], parts[6])
	default:
		return models.Position{}, errNotPosition
	}
}

func position(lat, latHem, lon, lonHem string) (models.Position, error) {
	la, err := parseCoord(lat, latHem, 2)
	if err != nil {
		return models.Position{}, fmt.Errorf("latitude: %w", err)
	}
	lo, err := parseCoord(lon, lonHem, 3)
	if err != nil {
		return models.Position{}, fmt.Errorf("longitude: %w", err)
	}
	return models.Position{Latitude: la, Longitude: lo}, nil
}

// parseCoord converts ddmm.mmmm / dddmm.mmmm into signed decimal degrees.
func parseCoord(value, hemisphere string, degDigits int) (float64, error) {
	if len(value) <= degDigits {
		return 0, fmt.Errorf("malformed coordinate %q", value)
	}
	deg, err := strconv.ParseFloat(value[:degDigits], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed degrees %q", value)
	}
	minutes, err := strconv.ParseFloat(value[degDigits:], 64)
	if err != nil || minutes >= 60 {
		return 0, fmt.Errorf("malformed minutes %q", value)
	}

	v := deg + minutes/60
	switch hemisphere {
	case "N", "E":
	case "S", "W":
		v = -v
	default:
		return 0, fmt.Errorf("unknown hemisphere %q", hemisphere)
	}
	return v, nil
}

func verifyChecksum(body, sum string) error {
	want, err := strconv.ParseUint(strings.TrimSpace(sum), 16, 8)
	if err != nil {
		return fmt.Errorf("malformed checksum %q", sum)
	}
	var got byte
	for i := 0; i < len(body); i++ {
		got ^= body[i]
	}
	if got != byte(want) {
		return fmt.Errorf("checksum mismatch: got %02X want %02X", got, want)
	}
	return nil
}
