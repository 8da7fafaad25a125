package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"moon-casino-backend/internal/config"
	"moon-casino-backend/internal/fairness"
	"moon-casino-backend/internal/games"
	"moon-casino-backend/internal/logger"
	"moon-casino-backend/internal/metrics"
	"moon-casino-backend/internal/models"
)

// Game is what the HTTP layer sees of a game: one live round per user, moved
// forward by intents and read back as a view.
type Game interface {
	Type() models.GameType
	Start(ctx context.Context, userID string, req models.StartRequest) (*models.RoundView, error)
	Act(ctx context.Context, userID string, req models.ActionRequest) (*models.RoundView, error)
	Cashout(ctx context.Context, userID string) (*models.RoundView, error)
	Current(ctx context.Context, userID string) (*models.RoundView, error)
}

// dealFunc builds a new round's game state from its seeded source. A non-nil
// settlement means the round ended on the deal.
type dealFunc func(r *games.Round, src fairness.Source) (*games.Settlement, error)

// actionFunc advances a live round. A nil settlement keeps the round live.
type actionFunc func(r *games.Round, src fairness.Source) (*games.Settlement, error)

type GameEngine struct {
	redis    *RedisService
	wallet   *Wallet
	fairness *fairness.Engine
	cfg      *config.Config
	now      func() time.Time
	games    map[models.GameType]Game
}

func NewGameEngine(redis *RedisService, wallet *Wallet, engine *fairness.Engine, cfg *config.Config) *GameEngine {
	ge := &GameEngine{
		redis:    redis,
		wallet:   wallet,
		fairness: engine,
		cfg:      cfg,
		now:      time.Now,
	}
	ge.games = map[models.GameType]Game{
		models.GameMines:     &MinesGame{engine: ge},
		models.GameBlackjack: &BlackjackGame{engine: ge},
		models.GameChicken:   &ChickenGame{engine: ge},
		models.GameCoinflip:  &CoinflipGame{engine: ge},
	}
	return ge
}

func (ge *GameEngine) WithClock(now func() time.Time) *GameEngine {
	ge.now = now
	return ge
}

func (ge *GameEngine) Fairness() *fairness.Engine {
	return ge.fairness
}

func (ge *GameEngine) Game(t models.GameType) (Game, error) {
	g, ok := ge.games[t]
	if !ok {
		return nil, models.InvalidParameter("unknown game %q", t)
	}
	return g, nil
}

func (ge *GameEngine) Mines() *MinesGame         { return ge.games[models.GameMines].(*MinesGame) }
func (ge *GameEngine) Blackjack() *BlackjackGame { return ge.games[models.GameBlackjack].(*BlackjackGame) }
func (ge *GameEngine) Chicken() *ChickenGame     { return ge.games[models.GameChicken].(*ChickenGame) }
func (ge *GameEngine) Coinflip() *CoinflipGame   { return ge.games[models.GameCoinflip].(*CoinflipGame) }

// start seeds a fresh round, lets the game deal it and places the wager. The
// round only exists once PlaceWager has debited the stake.
func (ge *GameEngine) start(ctx context.Context, userID string, game models.GameType, bet int64, deal dealFunc) (*models.RoundView, error) {
	if err := models.ValidateBet(bet, ge.cfg.Games.BetMin, ge.cfg.Games.BetMax); err != nil {
		return nil, err
	}

	user, err := ge.redis.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	serverSeed, err := fairness.NewServerSeed()
	if err != nil {
		return nil, err
	}

	round := &games.Round{
		ID:        uuid.New().String(),
		UserID:    userID,
		Game:      game,
		Bet:       bet,
		CreatedAt: ge.now().UnixMilli(),
		Fairness:  games.NewFairness(serverSeed, user.ClientSeed, user.Nonce+1),
	}

	src := round.Fairness.Source()
	settlement, err := deal(round, src)
	if err != nil {
		return nil, err
	}
	round.Fairness.Cursor = src.Cursor()
	if settlement != nil {
		// Stored with the wager so a failed settle can be finished later.
		round.Settle(settlement, round.CreatedAt)
	}

	// Held until a round that ended on the deal is settled, so no action
	// can settle it first.
	release, err := ge.redis.AcquireRoundLock(ctx, game, userID, ge.cfg.RoundLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := ge.wallet.PlaceWager(ctx, round); err != nil {
		return nil, err
	}
	metrics.RecordRoundStarted(string(game), bet)
	logger.Debug("round started", "round_id", round.ID, "game", game, "user_id", userID, "bet", bet)

	if settlement != nil {
		if err := ge.settle(ctx, round, settlement); err != nil {
			return nil, err
		}
	}
	return round.View(ge.fairness), nil
}

// act runs one intent against the user's live round under the round lock.
func (ge *GameEngine) act(ctx context.Context, userID string, game models.GameType, fn actionFunc) (*models.RoundView, error) {
	release, err := ge.redis.AcquireRoundLock(ctx, game, userID, ge.cfg.RoundLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	round, err := ge.redis.LoadRound(ctx, game, userID)
	if errors.Is(err, models.ErrRoundNotFound) {
		return nil, models.InvalidTransition("no active %s round", game)
	}
	if err != nil {
		return nil, err
	}
	if !round.Active() {
		if round.Settlement == nil {
			return nil, models.InvalidTransition("%s round is %s", game, round.Status())
		}
		if err := ge.settle(ctx, round, round.Settlement); err != nil {
			return nil, err
		}
		return round.View(ge.fairness), nil
	}

	src := round.Fairness.Source()
	settlement, err := fn(round, src)
	if err != nil {
		return nil, err
	}
	round.Fairness.Cursor = src.Cursor()

	if settlement != nil {
		if err := ge.settle(ctx, round, settlement); err != nil {
			return nil, err
		}
	} else if err := ge.redis.SaveRound(ctx, round); err != nil {
		return nil, err
	}

	return round.View(ge.fairness), nil
}

func (ge *GameEngine) settle(ctx context.Context, round *games.Round, s *games.Settlement) error {
	round.Settle(s, ge.now().UnixMilli())

	balance, err := ge.wallet.SettleRound(ctx, round, round.View(ge.fairness))
	if err != nil {
		round.Settlement = nil
		round.SettledAt = 0
		return err
	}
	s.Balance = balance

	metrics.RecordRoundSettled(string(round.Game), string(s.Outcome), s.Payout)
	logger.Info("round settled",
		"round_id", round.ID,
		"game", round.Game,
		"user_id", round.UserID,
		"bet", round.Bet,
		"outcome", s.Outcome,
		"payout", s.Payout,
		"balance", balance,
	)
	return nil
}

func (ge *GameEngine) current(ctx context.Context, userID string, game models.GameType) (*models.RoundView, error) {
	round, err := ge.redis.LoadRound(ctx, game, userID)
	if err != nil {
		return nil, err
	}
	return round.View(ge.fairness), nil
}

// ActiveRounds lists the user's live round in every game that has one.
func (ge *GameEngine) ActiveRounds(ctx context.Context, userID string) ([]*models.RoundView, error) {
	views := []*models.RoundView{}
	for _, t := range models.GameTypes {
		v, err := ge.current(ctx, userID, t)
		if errors.Is(err, models.ErrRoundNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (ge *GameEngine) History(ctx context.Context, userID string, limit int64) ([]*models.RoundView, error) {
	return ge.redis.GetRoundHistory(ctx, userID, limit)
}

// GetVerificationData returns the seed pair the user's next round will use.
func (ge *GameEngine) GetVerificationData(ctx context.Context, userID string) (*models.VerificationData, error) {
	user, err := ge.redis.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.VerificationData{
		ClientSeed: user.ClientSeed,
		Nonce:      user.Nonce + 1,
		HouseEdges: ge.fairness.HouseEdges(),
	}, nil
}

// SetClientSeed rotates the user's client seed and restarts the nonce. Live
// rounds keep the seeds they were dealt with.
func (ge *GameEngine) SetClientSeed(ctx context.Context, userID, seed string) (*models.VerificationData, error) {
	if err := ge.redis.SetClientSeed(ctx, userID, seed); err != nil {
		return nil, err
	}
	return &models.VerificationData{ClientSeed: seed, Nonce: 1, HouseEdges: ge.fairness.HouseEdges()}, nil
}

const defaultVerifyDraws = 30

// VerifyGameResult replays a revealed round from its seeds.
func (ge *GameEngine) VerifyGameResult(req models.VerifyRequest) (*models.VerifyResult, error) {
	hash := fairness.ServerSeedHash(req.ServerSeed)
	result := &models.VerifyResult{
		Game:      req.Game,
		Hash:      hash,
		HashMatch: req.ServerSeedHash == "" || req.ServerSeedHash == hash,
	}

	src := fairness.NewSeededSource(req.ServerSeed, req.ClientSeed, req.Nonce, 0)
	switch req.Game {
	case models.GameMines:
		count := req.MinesCount
		if count == 0 {
			count = defaultMinesCount
		}
		grid, err := fairness.PlaceMines(src, count)
		if err != nil {
			return nil, err
		}
		result.MineCells = []int{}
		for i, mine := range grid {
			if mine {
				result.MineCells = append(result.MineCells, i)
			}
		}
	case models.GameBlackjack:
		result.Deck = fairness.NewDeck(src)
	case models.GameChicken, models.GameCoinflip:
		n := req.Draws
		if n == 0 {
			n = defaultVerifyDraws
		}
		result.Draws = fairness.Replay(req.ServerSeed, req.ClientSeed, req.Nonce, n)
	default:
		return nil, models.InvalidParameter("unknown game %q", req.Game)
	}
	return result, nil
}
