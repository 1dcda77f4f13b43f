package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ranch/internal/domain/models"
	"github.com/mamadbah2/ranch/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// HelpText lists the supported commands.
const HelpText = "Commands:\n" +
	"/weigh <tag> <lbs> - record a weigh-in\n" +
	"/cost <tag> - feed, medication and vet cost to date\n" +
	"/adg <tag> - average daily gain and feed efficiency\n" +
	"/breakeven [tag] <price/lb> [target lbs] - break-even and margin\n" +
	"The tag can be left out to reuse the last animal you asked about."

// AnimalFinder resolves ear tags.
type AnimalFinder interface {
	FindAnimalByTag(ctx context.Context, tag string) (models.Animal, error)
}

// WeightRecorder stores weigh-ins.
type WeightRecorder interface {
	RecordWeight(ctx context.Context, cattleID string, date time.Time, weight float64) (models.Animal, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	CostSummary(ctx context.Context, cattleID string) (models.CostSummary, error)
	Growth(ctx context.Context, cattleID string) (models.GrowthMetrics, error)
	AnimalProfitability(ctx context.Context, cattleID string, marketPrice, targetWeight float64) (models.BreakEvenAnalysis, error)
}

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	animals   AnimalFinder
	weights   WeightRecorder
	reporting ReportingAdapter
	sessions  *SessionManager
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(animals AnimalFinder, weights WeightRecorder, reporting ReportingAdapter, sessions *SessionManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionManager()
	}
	return &Service{
		animals:   animals,
		weights:   weights,
		reporting: reporting,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp:
		return HelpText, nil
	case models.CommandWeigh:
		return s.weigh(ctx, cmd.Args, sender)
	case models.CommandCost:
		animal, err := s.resolve(ctx, cmd.Args, sender)
		if err != nil {
			return "", err
		}
		summary, err := s.reporting.CostSummary(ctx, animal.ID)
		if err != nil {
			return "", err
		}
		return reporting.FormatCostSummary(animal.Tag, summary), nil
	case models.CommandADG:
		animal, err := s.resolve(ctx, cmd.Args, sender)
		if err != nil {
			return "", err
		}
		m, err := s.reporting.Growth(ctx, animal.ID)
		if err != nil {
			return "", err
		}
		return reporting.FormatGrowth(animal.Tag, m), nil
	case models.CommandBreakEven:
		return s.breakEven(ctx, cmd.Args, sender)
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) weigh(ctx context.Context, args []string, sender string) (string, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", ErrInvalidArguments
	}
	weight, err := parsePositive(args[len(args)-1])
	if err != nil {
		return "", err
	}
	animal, err := s.resolve(ctx, args[:len(args)-1], sender)
	if err != nil {
		return "", err
	}

	updated, err := s.weights.RecordWeight(ctx, animal.ID, models.StartOfDay(s.now()), weight)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("Weight saved for %s: %.0f lbs.", animal.Tag, weight)
	if m, err := s.reporting.Growth(ctx, updated.ID); err == nil {
		msg += "\n" + reporting.FormatGrowth(animal.Tag, m)
	} else {
		s.logger.Debug("growth summary failed", zap.Error(err))
	}
	return msg, nil
}

func (s *Service) breakEven(ctx context.Context, args []string, sender string) (string, error) {
	var tagArgs, numbers []string
	switch {
	case len(args) == 1:
		numbers = args
	case len(args) == 2 && s.priceFirst(ctx, args[0], sender):
		numbers = args
	case len(args) == 2 || len(args) == 3:
		tagArgs, numbers = args[:1], args[1:]
	default:
		return "", ErrInvalidArguments
	}

	price, err := parsePositive(numbers[0])
	if err != nil {
		return "", err
	}
	var target float64
	if len(numbers) > 1 {
		if target, err = parsePositive(numbers[1]); err != nil {
			return "", err
		}
	}

	animal, err := s.resolve(ctx, tagArgs, sender)
	if err != nil {
		return "", err
	}
	analysis, err := s.reporting.AnimalProfitability(ctx, animal.ID, price, target)
	if err != nil {
		return "", err
	}
	return reporting.FormatBreakEven(animal.Tag, analysis), nil
}

// priceFirst reports whether two breakeven arguments are <price> <target> for
// the session animal rather than <tag> <price>. A number that is also an ear
// tag stays a tag.
func (s *Service) priceFirst(ctx context.Context, raw, sender string) bool {
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return false
	}
	if _, ok := s.sessions.LastTag(sender); !ok {
		return false
	}
	_, err := s.animals.FindAnimalByTag(ctx, raw)
	return errors.Is(err, models.ErrNotFound)
}

// resolve finds the animal named by args[0], falling back to the sender's
// last animal when the tag is omitted.
func (s *Service) resolve(ctx context.Context, args []string, sender string) (models.Animal, error) {
	var tag string
	if len(args) > 0 {
		tag = args[0]
	} else if last, ok := s.sessions.LastTag(sender); ok {
		tag = last
	} else {
		return models.Animal{}, fmt.Errorf("%w: animal tag required", ErrInvalidArguments)
	}

	animal, err := s.animals.FindAnimalByTag(ctx, tag)
	if err != nil {
		return models.Animal{}, fmt.Errorf("animal %s: %w", tag, err)
	}
	s.sessions.Remember(sender, animal.Tag)
	return animal, nil
}

func parsePositive(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive number", ErrInvalidArguments, raw)
	}
	return v, nil
}
