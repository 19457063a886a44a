package application

import (
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
)

// UsageService tracks AI token usage separately from audit logging.
type UsageService struct {
	repo domain.AuditRepository
}

func NewUsageService(repo domain.AuditRepository) *UsageService {
	return &UsageService{repo: repo}
}

// RecordTokenUsage records one completion for a specific model.
func (s *UsageService) RecordTokenUsage(model string, inputTokens, outputTokens int) error {
	stats := s.loadOrInitStats()

	stats.TotalCalls++
	stats.LastCallAt = time.Now()
	if inputTokens > 0 {
		stats.ProviderStats[model+":input"] += inputTokens
	}
	if outputTokens > 0 {
		stats.ProviderStats[model+":output"] += outputTokens
	}

	return s.repo.UpdateUsage(*stats)
}

// GetUsage returns the current usage statistics.
func (s *UsageService) GetUsage() (*domain.UsageStats, error) {
	return s.loadOrInitStats(), nil
}

// GetTotalTokens returns the total token count across all models.
func (s *UsageService) GetTotalTokens() (int, error) {
	stats := s.loadOrInitStats()
	total := 0
	for _, count := range stats.ProviderStats {
		total += count
	}
	return total, nil
}

func (s *UsageService) loadOrInitStats() *domain.UsageStats {
	stats, err := s.repo.LoadUsage()
	if err != nil || stats == nil {
		stats = &domain.UsageStats{}
	}
	if stats.ProviderStats == nil {
		stats.ProviderStats = make(map[string]int)
	}
	return stats
}
