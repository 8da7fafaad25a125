package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"moon-casino-backend/internal/models"
)

// Every balance mutation runs as one script: the balance change, the stats
// update, the transaction record and the event are applied together or not
// at all. Derived keys (transactions, leaderboard, feed) are built inside the
// scripts, which assumes a single Redis node rather than a cluster.

const luaPreludeTemplate = `
local function load_user(key)
	local raw = redis.call("GET", key)
	if not raw then
		return nil
	end
	return cjson.decode(raw)
end

local function save_user(key, user)
	redis.call("SET", key, cjson.encode(user))
	redis.call("ZADD", "{{leaderboard}}", user.balance, user.username)
end

local function append_tx(user, id, kind, amount, game, round_id, counterparty, now)
	local tx = {
		id = id,
		user_id = user.id,
		username = user.username,
		type = kind,
		amount = amount,
		game = game,
		round_id = round_id,
		counterparty = counterparty,
		timestamp = now,
		balance_after = user.balance,
	}
	redis.call("SET", "{{tx}}" .. id, cjson.encode(tx))
	redis.call("ZADD", "{{user}}" .. user.id .. ":transactions", now, id)
end

local function publish(kind, user_id, data)
	local event = {type = kind, data = data}
	if user_id then
		event.user_id = user_id
	end
	redis.call("PUBLISH", "{{events}}", cjson.encode(event))
end

local function record_wager(user, amount, now, today)
	local s = user.stats
	if s.wager_day ~= today then
		s.wagered_today = 0
		s.wager_day = today
	end
	if now - (s.last_wagered or 0) > 604800000 then
		s.wagered_week = 0
	end
	s.wagered_today = (s.wagered_today or 0) + amount
	s.wagered_week = (s.wagered_week or 0) + amount
	s.wagered_lifetime = (s.wagered_lifetime or 0) + amount
	s.last_wagered = now
end

local function record_win(user, amount, now, today)
	local s = user.stats
	s.total_wins = (s.total_wins or 0) + 1
	if amount > (s.biggest_win or 0) then
		s.biggest_win = amount
	end
	if s.win_day ~= today then
		s.won_today = 0
		s.win_day = today
	end
	s.won_today = (s.won_today or 0) + amount
	s.last_win = now
end

local function record_loss(user)
	user.stats.total_losses = (user.stats.total_losses or 0) + 1
end
`

var luaKeys = strings.NewReplacer(
	"{{leaderboard}}", KeyLeaderboard,
	"{{tx}}", PrefixTransaction,
	"{{user}}", PrefixUser,
	"{{events}}", ChannelEvents,
	"{{wins}}", KeyLiveWins,
)

func ledgerScript(body string) *redis.Script {
	return redis.NewScript(luaKeys.Replace(luaPreludeTemplate + body))
}

// KEYS[1] user; ARGV amount, tx id, kind, game, now
var debitScript = ledgerScript(`
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
local amount = tonumber(ARGV[1])
if user.balance < amount then
	return redis.error_reply("INSUFFICIENT_FUNDS")
end
user.balance = user.balance - amount
save_user(KEYS[1], user)
append_tx(user, ARGV[2], ARGV[3], amount, ARGV[4], "", "", tonumber(ARGV[5]))
publish("balance_update", user.id, {balance = user.balance})
return user.balance
`)

// KEYS[1] user; ARGV amount, tx id, kind, game, now, today
var creditScript = ledgerScript(`
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
local amount = tonumber(ARGV[1])
local kind = ARGV[3]
local now = tonumber(ARGV[5])
user.balance = user.balance + amount
if kind == "win" then
	record_win(user, amount, now, ARGV[6])
elseif kind == "loss" then
	record_loss(user)
end
save_user(KEYS[1], user)
append_tx(user, ARGV[2], kind, amount, ARGV[4], "", "", now)
publish("balance_update", user.id, {balance = user.balance})
return user.balance
`)

// KEYS[1] user; ARGV amount, now, today
var recordWagerScript = ledgerScript(`
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
record_wager(user, tonumber(ARGV[1]), tonumber(ARGV[2]), ARGV[3])
save_user(KEYS[1], user)
return user.stats.wagered_today
`)

// KEYS[1] sender, KEYS[2] recipient username index
// ARGV amount, tax, sent tx id, received tx id, now
var transferScript = ledgerScript(`
local sender = load_user(KEYS[1])
if not sender then
	return redis.error_reply("USER_NOT_FOUND")
end
local rid = redis.call("GET", KEYS[2])
if not rid then
	return redis.error_reply("RECIPIENT_NOT_FOUND")
end
if rid == sender.id then
	return redis.error_reply("SELF_TRANSFER")
end
local rkey = "{{user}}" .. rid
local recipient = load_user(rkey)
if not recipient then
	return redis.error_reply("RECIPIENT_NOT_FOUND")
end
local amount = tonumber(ARGV[1])
local tax = tonumber(ARGV[2])
local now = tonumber(ARGV[5])
if sender.balance < amount then
	return redis.error_reply("INSUFFICIENT_FUNDS")
end
local received = amount - tax
sender.balance = sender.balance - amount
recipient.balance = recipient.balance + received
save_user(KEYS[1], sender)
save_user(rkey, recipient)
append_tx(sender, ARGV[3], "transfer_sent", amount, "", "", recipient.username, now)
append_tx(recipient, ARGV[4], "transfer_received", received, "", "", sender.username, now)
publish("balance_update", sender.id, {balance = sender.balance})
publish("balance_update", recipient.id, {balance = recipient.balance})
publish("transfer", recipient.id, {from = sender.username, amount = received, tax = tax})
return {tax, received, sender.balance}
`)

// KEYS[1] user; ARGV amount, threshold, cooldown ms, tx id, now
var freeCoinsScript = ledgerScript(`
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
local amount = tonumber(ARGV[1])
local cooldown = tonumber(ARGV[3])
local now = tonumber(ARGV[5])
if user.balance >= tonumber(ARGV[2]) then
	return redis.error_reply("BALANCE_TOO_HIGH")
end
local fc = user.free_coins
if now < (fc.last_claim or 0) + cooldown then
	return redis.error_reply("COOLDOWN_ACTIVE")
end
user.balance = user.balance + amount
fc.last_claim = now
fc.cooldown_until = now + cooldown
save_user(KEYS[1], user)
append_tx(user, ARGV[4], "free_coins", amount, "", "", "", now)
publish("balance_update", user.id, {balance = user.balance})
return {user.balance, fc.cooldown_until}
`)

// KEYS[1] user, KEYS[2] live round
// ARGV bet, tx id, game, round id, round data, now, today, nonce
// The round was seeded with nonce; it must be the next one for the user.
var placeWagerScript = ledgerScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return redis.error_reply("ROUND_ACTIVE")
end
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
local bet = tonumber(ARGV[1])
local now = tonumber(ARGV[6])
local nonce = tonumber(ARGV[8])
if (user.nonce or 0) + 1 ~= nonce then
	return redis.error_reply("UPDATE_CONFLICT")
end
if user.balance < bet then
	return redis.error_reply("INSUFFICIENT_FUNDS")
end
user.balance = user.balance - bet
user.nonce = nonce
record_wager(user, bet, now, ARGV[7])
save_user(KEYS[1], user)
append_tx(user, ARGV[2], "wager", bet, ARGV[3], ARGV[4], "", now)
redis.call("HSET", KEYS[2], "id", ARGV[4], "data", ARGV[5], "version", 1)
publish("balance_update", user.id, {balance = user.balance})
return user.balance
`)

// KEYS[1] user, KEYS[2] live round, KEYS[3] round history
// ARGV round id, version, outcome, payout, bet, game, tx id, now, today,
//      summary, multiplier, big win threshold, history limit, live wins limit
var settleRoundScript = ledgerScript(`
local cur = redis.call("HMGET", KEYS[2], "id", "version")
if cur[1] ~= ARGV[1] then
	return redis.error_reply("ROUND_NOT_FOUND")
end
if tonumber(cur[2]) ~= tonumber(ARGV[2]) then
	return redis.error_reply("UPDATE_CONFLICT")
end
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
local outcome = ARGV[3]
local payout = tonumber(ARGV[4])
local bet = tonumber(ARGV[5])
local game = ARGV[6]
local now = tonumber(ARGV[8])
local multiplier = tonumber(ARGV[11])

if outcome == "loss" then
	record_loss(user)
	append_tx(user, ARGV[7], "loss", 0, game, ARGV[1], "", now)
else
	user.balance = user.balance + payout
	if outcome == "win" and payout > bet then
		record_win(user, payout - bet, now, ARGV[9])
	end
	append_tx(user, ARGV[7], outcome, payout, game, ARGV[1], "", now)
end
save_user(KEYS[1], user)

redis.call("DEL", KEYS[2])
redis.call("LPUSH", KEYS[3], ARGV[10])
redis.call("LTRIM", KEYS[3], 0, tonumber(ARGV[13]) - 1)

publish("balance_update", user.id, {balance = user.balance})
publish("round_settled", user.id, {round_id = ARGV[1], game = game, outcome = outcome, payout = payout})

if outcome == "win" and payout > bet then
	local win = {
		username = user.username,
		game = game,
		bet = bet,
		payout = payout,
		multiplier = multiplier,
		timestamp = now,
	}
	redis.call("LPUSH", "{{wins}}", cjson.encode(win))
	redis.call("LTRIM", "{{wins}}", 0, tonumber(ARGV[14]) - 1)
	if payout >= tonumber(ARGV[12]) then
		publish("big_win", nil, win)
	end
end
return user.balance
`)

// KEYS[1] live round; ARGV round id, expected version, data
var saveRoundScript = redis.NewScript(`
local cur = redis.call("HMGET", KEYS[1], "id", "version")
if cur[1] ~= ARGV[1] then
	return redis.error_reply("ROUND_NOT_FOUND")
end
if tonumber(cur[2]) ~= tonumber(ARGV[2]) then
	return redis.error_reply("UPDATE_CONFLICT")
end
local version = tonumber(ARGV[2]) + 1
redis.call("HSET", KEYS[1], "data", ARGV[3], "version", version)
return version
`)

// KEYS[1] counter; ARGV window ms. A counter left without a TTL gets one on
// the next call.
var rateLimitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// KEYS[1] lock; ARGV token
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// KEYS[1] username index, KEYS[2] email index, KEYS[3] user
// ARGV user id, user json, balance, username
var createUserScript = redis.NewScript(luaKeys.Replace(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.error_reply("USERNAME_TAKEN")
end
if redis.call("EXISTS", KEYS[2]) == 1 then
	return redis.error_reply("EMAIL_TAKEN")
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[2])
redis.call("ZADD", "{{leaderboard}}", ARGV[3], ARGV[4])
return 1
`))

// KEYS[1] user; ARGV client seed
var setClientSeedScript = ledgerScript(`
local user = load_user(KEYS[1])
if not user then
	return redis.error_reply("USER_NOT_FOUND")
end
user.client_seed = ARGV[1]
user.nonce = 0
save_user(KEYS[1], user)
return user.nonce
`)

var scriptErrors = []struct {
	code string
	err  error
}{
	{"INSUFFICIENT_FUNDS", models.ErrInsufficientFunds},
	{"BALANCE_TOO_HIGH", models.ErrBalanceTooHigh},
	{"COOLDOWN_ACTIVE", models.ErrCooldownActive},
	{"RECIPIENT_NOT_FOUND", models.ErrRecipientNotFound},
	{"SELF_TRANSFER", models.ErrSelfTransfer},
	{"ROUND_ACTIVE", models.ErrRoundActive},
	{"ROUND_NOT_FOUND", models.ErrRoundNotFound},
	{"UPDATE_CONFLICT", models.ErrUpdateConflict},
	{"USER_NOT_FOUND", models.ErrUserNotFound},
	{"USERNAME_TAKEN", models.ErrUsernameTaken},
	{"EMAIL_TAKEN", models.ErrEmailTaken},
}

// scriptError maps a script's error_reply code back to its sentinel. Any
// other failure is an infrastructure fault.
func scriptError(err error) error {
	if err == nil {
		return nil
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		for _, se := range scriptErrors {
			if strings.Contains(msg, se.code) {
				return se.err
			}
		}
	}
	return storeError(err)
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}
