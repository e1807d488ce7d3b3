package city

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/repositories"
	"github.com/upb/core-platform/services"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

// catalog column order: latD,ns,longD,ew,city,state
const catalogColumns = 6

// ImportResult summarises one catalog import
type ImportResult struct {
	Imported int
	Skipped  int
}

// String implements fmt.Stringer
func (r ImportResult) String() string {
	return fmt.Sprintf("imported=%d skipped=%d", r.Imported, r.Skipped)
}

// Import reads a city catalog and stores every well-formed row in a single
// transaction. Malformed rows, including a header line, are skipped and counted.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	cities, skipped, err := parseCatalog(r)
	if err != nil {
		return ImportResult{}, services.WrapError(services.ErrorTypeValidation, "unreadable city catalog", err)
	}

	result := ImportResult{Imported: len(cities), Skipped: skipped}
	if len(cities) > 0 {
		err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
			return s.cities.CreateBatch(ctx, cities)
		})
		if err != nil {
			return ImportResult{}, services.WrapInternal("failed to import cities", err)
		}
		s.invalidate()
	}

	s.metrics.RecordCityImport(result.Imported, result.Skipped)
	s.logger.Info("city catalog imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// SeedIfEmpty imports the catalog only when no city is stored yet.
// The boolean reports whether an import ran.
func (s *Service) SeedIfEmpty(ctx context.Context, r io.Reader) (ImportResult, bool, error) {
	count, err := s.cities.Count(ctx)
	if err != nil {
		return ImportResult{}, false, services.WrapInternal("failed to count cities", err)
	}
	if count > 0 {
		s.logger.Debug("city catalog already seeded", zap.Int64("count", count))
		return ImportResult{}, false, nil
	}

	result, err := s.Import(ctx, r)
	if err != nil {
		return ImportResult{}, false, err
	}
	return result, true, nil
}

func parseCatalog(r io.Reader) ([]*models.City, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	reader.LazyQuotes = true

	var (
		cities  []*models.City
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return nil, 0, err
		}

		city, ok := parseRow(record)
		if !ok {
			skipped++
			continue
		}
		cities = append(cities, city)
	}
	return cities, skipped, nil
}

func parseRow(record []string) (*models.City, bool) {
	if len(record) != catalogColumns {
		return nil, false
	}
	for i := range record {
		record[i] = strings.Trim(strings.TrimSpace(record[i]), `"`)
	}

	latD, err := strconv.Atoi(record[0])
	if err != nil {
		return nil, false
	}
	longD, err := strconv.Atoi(record[2])
	if err != nil {
		return nil, false
	}

	req := models.CityRequest{
		LatD:  latD,
		NS:    record[1],
		LongD: longD,
		EW:    record[3],
		City:  record[4],
		State: record[5],
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, false
	}
	return models.CityFromRequest(req), true
}
