package login

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/osuAkatsuki/bancho-core/internal/kv"
	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/serverpackets"
	"github.com/osuAkatsuki/bancho-core/internal/session"
)

// UserStore is the slice of account persistence the login flow reads.
type UserStore interface {
	FetchOne(ctx context.Context, filter model.UserFilter) (*model.User, error)
	FetchFriends(ctx context.Context, userID int) ([]int, error)
	LogIP(ctx context.Context, userID int, ip string) error
	FetchCountry(ctx context.Context, userID int) (string, error)
}

// PasswordVerifier settles a password md5 against the stored hash.
type PasswordVerifier interface {
	Verify(ctx context.Context, passwordMD5, bcryptHash string) (bool, error)
}

// Geolocator resolves a client address to a rough location.
type Geolocator interface {
	Lookup(ip string) model.Geolocation
}

// Locker serializes the duplicate-check-and-create critical section
// across server processes.
type Locker interface {
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// AccountService applies the account-state transitions login can
// trigger: freeze arming, auto-restriction and donor expiry.
type AccountService interface {
	BeginFreezeTimer(ctx context.Context, userID int) (int64, error)
	Restrict(ctx context.Context, userID int, currentPrivileges model.Privileges) (model.Privileges, error)
	Unfreeze(ctx context.Context, userID, authorID int, log bool) error
	RevokeSupporterPrivileges(ctx context.Context, userID int, currentPrivileges model.Privileges) (model.Privileges, error)
	LogRap(ctx context.Context, userID int, text string) error
	NotifyAnticheat(ctx context.Context, message string)
}

// Config is the login-time tunables subset.
type Config struct {
	LoginNotification string
	Maintenance       bool
	MenuIconURL       string
	MenuOnClickURL    string
}

// Controller runs the login flow.
type Controller struct {
	users    UserStore
	registry *session.Registry
	verifier PasswordVerifier
	geo      Geolocator
	locker   Locker
	accounts AccountService
	cfg      Config
}

func NewController(
	users UserStore,
	registry *session.Registry,
	verifier PasswordVerifier,
	geo Geolocator,
	locker Locker,
	accounts AccountService,
	cfg Config,
) *Controller {
	return &Controller{
		users:    users,
		registry: registry,
		verifier: verifier,
		geo:      geo,
		locker:   locker,
		accounts: accounts,
		cfg:      cfg,
	}
}

// RejectedToken is the cho-token header value of a failed login.
const RejectedToken = "no"

// Result is the wire outcome of a login attempt: the response body and
// the cho-token header value.
type Result struct {
	Body  []byte
	Token string
}

// Rejection texts. The wording is part of the client-facing surface.
const (
	invalidCredentialsText = "Akatsuki: You have entered an invalid username or password. Please check your credentials and try again!"
	genericFailureText     = "Akatsuki: Something went wrong during your login attempt... Please try again!"
	bannedText             = "You are banned. The earliest we accept appeals is 2 months after your most recent offense, and we really only care for the truth."
	lockedText             = "Your account is locked. You can't log in, but your profile and scores are still visible from the website. The earliest we accept appeals is 2 months after your most recent offense, and really only care for the truth."
	outdatedClientText     = "Hey!\nThe osu! client you're trying to use is out of date.\nCustom/out of date osu! clients are not allowed on Akatsuki.\nPlease relogin using the current osu! client - no fallback, sorry!"
	alreadyLoggedInText    = "Akatsuki: You are already logged in somewhere else!"
	maintenanceText        = "Akatsuki is currently in maintenance mode. Please try to login again later."
	maintenanceStaffText   = "Akatsuki is currently in maintenance mode. Only admins have full access to the server.\nType '!system maintenance off' in chat to disable maintenance mode."
)

const freezeWarningFormat = "Your account has been frozen by an administrator%s\n" +
	"This is not a restriction, but will lead to one if ignored.\n" +
	"You are required to submit a liveplay using the (specified criteria)[https://pastebin.com/BwcXp6Cr]\n" +
	"Please remember we are not stupid - we have done plenty of these before and have heard every excuse in the book; if you are breaking rules, your best bet would be to admit to a staff member, lying will only end up digging your grave deeper.\n" +
	"-------------\n" +
	"If you have any questions or are ready to liveplay, please contact an (Akatsuki Administrator)[https://akatsuki.pw/team] {ingame, (Discord)[https://akatsuki.pw/discord], etc.}\n" +
	"Time until account restriction: %s."

const autoRestrictedText = "Your account has been automatically restricted due to an account freeze being left unhandled for over 7 days.\n" +
	"You are still welcome to liveplay, although your account will remain in restricted mode unless this is handled."

const donorExpiredFormat = "Your %s tag has expired.\n" +
	"Whether you continue to support us or not, we'd like to thank you to the moon and back for your support so far - it really means everything to us.\n" +
	"- cmyui, and the Akatsuki Team"

// failure builds the shared rejection shape: a -1 account id and a
// notification explaining why.
func failure(notification string) Result {
	body := append(serverpackets.AccountID(-1), serverpackets.Notification(notification)...)
	return Result{Body: body, Token: RejectedToken}
}

// Login runs the full login state machine for one request body and
// client address, returning the packet response and cho-token value.
// Client-visible conditions come back as failure Results; backend
// errors abort the request.
func (c *Controller) Login(ctx context.Context, body []byte, ip string) (Result, error) {
	data, err := ParseLoginData(body)
	if err != nil {
		return Result{}, err
	}

	user, err := c.users.FetchOne(ctx, model.UserFilter{Username: &data.Username})
	if err != nil {
		return Result{}, err
	}
	if user == nil {
		return failure(invalidCredentialsText), nil
	}

	if user.ID == session.BotUserID {
		return failure(genericFailureText), nil
	}

	ok, err := c.verifier.Verify(ctx, data.PasswordMD5, user.PasswordBcrypt)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return failure(invalidCredentialsText), nil
	}

	if !user.Privileges.PendingVerification() {
		if user.Privileges&(model.UserPublic|model.UserNormal) == 0 {
			return failure(bannedText), nil
		}
		if user.Privileges&model.UserPublic != 0 && user.Privileges&model.UserNormal == 0 {
			return failure(lockedText), nil
		}
	}

	version, err := ParseClientVersion(data.OsuVersion)
	if err != nil {
		return failure(genericFailureText), nil
	}
	if version.Outdated(time.Now()) {
		slog.Warn("denied login from outdated client",
			"username", user.Username,
			"osu_version", data.OsuVersion)
		return failure(outdatedClientText), nil
	}

	if err := c.users.LogIP(ctx, user.ID, ip); err != nil {
		return Result{}, err
	}

	// Duplicate check and session creation are a single critical
	// section; tournament clients may hold several sessions.
	var (
		token     *model.Token
		duplicate bool
	)
	err = c.locker.WithLock(ctx, kv.TokensLock, func(ctx context.Context) error {
		if !version.Tournament() {
			existing, err := c.registry.FetchUserTokens(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				duplicate = true
				return nil
			}
		}

		var err error
		token, err = c.registry.CreateToken(ctx, session.CreateTokenParams{
			UserID:            user.ID,
			Username:          user.Username,
			Privileges:        user.Privileges,
			Whitelist:         user.Whitelist,
			SilenceEndTime:    user.SilenceEnd,
			IP:                ip,
			UTCOffset:         data.UTCOffset,
			Tournament:        version.Tournament(),
			BlockNonFriendsDM: data.PMPrivate,
		})
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if duplicate {
		return failure(alreadyLoggedInText), nil
	}

	slog.Info("successful login", "username", user.Username, "ip", ip)

	if err := c.registry.CheckRestricted(ctx, token.TokenID, token.UserID, token.Privileges); err != nil {
		return Result{}, err
	}

	var response []byte
	now := time.Now().Unix()
	privileges := token.Privileges

	if user.Frozen != 0 {
		frozen := user.Frozen
		if frozen == 1 {
			if frozen, err = c.accounts.BeginFreezeTimer(ctx, user.ID); err != nil {
				return Result{}, err
			}
		}

		freezeStr := ""
		if user.FreezeReason != nil && *user.FreezeReason != "" {
			freezeStr = fmt.Sprintf(" as a result of:\n\n%s\n", *user.FreezeReason)
		}

		if frozen > now {
			bot, err := c.users.FetchOne(ctx, model.UserFilter{ID: intPtr(session.BotUserID)})
			if err != nil {
				return Result{}, err
			}
			if bot == nil {
				return Result{}, fmt.Errorf("login: bot account not found")
			}

			message := fmt.Sprintf(freezeWarningFormat, freezeStr, formatDuration(frozen-now))
			response = append(response, serverpackets.SendMessage(bot.Username, message, token.Username, int32(bot.ID))...)
		} else {
			if privileges, err = c.accounts.Restrict(ctx, user.ID, privileges); err != nil {
				return Result{}, err
			}
			if err := c.accounts.Unfreeze(ctx, user.ID, user.ID, false); err != nil {
				return Result{}, err
			}

			response = append(response, serverpackets.Notification(autoRestrictedText)...)

			if err := c.accounts.LogRap(ctx, user.ID, "has been automatically restricted due to a pending freeze."); err != nil {
				return Result{}, err
			}
			c.accounts.NotifyAnticheat(ctx, fmt.Sprintf(
				"[%s](https://akatsuki.pw/u/%d) has been automatically restricted due to a pending freeze.",
				user.Username, user.ID))
		}
	}

	if privileges&model.UserDonor != 0 {
		roleName := "supporter"
		if privileges&model.UserPremium != 0 {
			roleName = "premium"
		}

		if now >= user.DonorExpire {
			if privileges, err = c.accounts.RevokeSupporterPrivileges(ctx, user.ID, privileges); err != nil {
				return Result{}, err
			}
			response = append(response, serverpackets.Notification(fmt.Sprintf(donorExpiredFormat, roleName))...)
		} else if user.DonorExpire-now <= 86_400*7 {
			response = append(response, serverpackets.Notification(fmt.Sprintf(
				"Your %s tag will expire in %s", roleName, padDuration(user.DonorExpire-now)))...)
		}
	}

	silence := session.RemainingSilence(token.SilenceEndTime, now)

	// Donors keep their website country and hide their coordinates.
	var location model.Geolocation
	if privileges&model.UserDonor != 0 {
		country, err := c.users.FetchCountry(ctx, user.ID)
		if err != nil {
			return Result{}, err
		}
		location = model.Geolocation{Country: country}
	} else {
		location = c.geo.Lookup(ip)
	}

	countryID := model.CountryID(location.Country)
	token, err = c.registry.UpdateToken(ctx, token.TokenID, model.TokenUpdate{
		Country:   &countryID,
		Latitude:  &location.Latitude,
		Longitude: &location.Longitude,
	})
	if err != nil {
		return Result{}, err
	}
	if token == nil {
		return Result{}, fmt.Errorf("login: session vanished during setup")
	}
	// The wire snapshot must reflect restriction or donor changes made
	// above; the stored row keeps the creation-time value.
	token.Privileges = privileges

	if c.cfg.LoginNotification != "" {
		response = append(response, serverpackets.Notification(c.cfg.LoginNotification)...)
	}

	if c.cfg.Maintenance {
		if !privileges.Staff() {
			if err := c.registry.DeleteToken(ctx, token.TokenID); err != nil {
				return Result{}, err
			}
			body := append(response, serverpackets.AccountID(-1)...)
			body = append(body, serverpackets.Notification(maintenanceText)...)
			return Result{Body: body, Token: RejectedToken}, nil
		}
		response = append(response, serverpackets.Notification(maintenanceStaffText)...)
	}

	response = append(response, serverpackets.ProtocolVersion(serverpackets.ProtocolVersionNumber)...)
	response = append(response, serverpackets.AccountID(int32(user.ID))...)
	response = append(response, serverpackets.SilenceEnd(int32(silence))...)
	response = append(response, serverpackets.Privileges(privileges.Bancho())...)
	response = append(response, serverpackets.UserPresence(token)...)
	response = append(response, serverpackets.UserStats(token)...)

	if err := c.registry.JoinChannel(ctx, token.TokenID, "#osu"); err != nil {
		return Result{}, err
	}
	if err := c.registry.JoinChannel(ctx, token.TokenID, "#announce"); err != nil {
		return Result{}, err
	}

	channels, err := c.registry.Channels(ctx)
	if err != nil {
		return Result{}, err
	}
	for _, channel := range channels {
		if !channel.PublicRead || channel.Instance {
			continue
		}
		subscribers, err := c.registry.StreamClients(ctx, "chat/"+channel.Name)
		if err != nil {
			return Result{}, err
		}
		response = append(response, serverpackets.ChannelInfo(channel.Name, channel.Description, uint16(len(subscribers)))...)
	}
	response = append(response, serverpackets.ChannelInfoEnd()...)

	friends, err := c.users.FetchFriends(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	response = append(response, serverpackets.FriendsList(friends)...)

	if c.cfg.MenuIconURL != "" && c.cfg.MenuOnClickURL != "" {
		response = append(response, serverpackets.MainMenuIcon(c.cfg.MenuIconURL, c.cfg.MenuOnClickURL)...)
	}

	// Presence snapshot of everyone else, under the same lock logins
	// serialize on so no session is missed or duplicated.
	err = c.locker.WithLock(ctx, kv.TokensLock, func(ctx context.Context) error {
		others, err := c.registry.FetchAllTokens(ctx)
		if err != nil {
			return err
		}
		for _, other := range others {
			if other.TokenID == token.TokenID || other.Privileges.Restricted() {
				continue
			}
			response = append(response, serverpackets.UserPresence(other)...)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if !privileges.Restricted() {
		if err := c.registry.Broadcast(ctx, session.MainStream, serverpackets.UserPresence(token), nil); err != nil {
			return Result{}, err
		}
	}

	return Result{Body: response, Token: token.TokenID}, nil
}

// formatDuration renders a second count the way countdown texts expect:
// H:MM:SS, prefixed with "N day[s], " past 24 hours.
func formatDuration(seconds int64) string {
	days := seconds / 86_400
	rem := seconds % 86_400
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, rem%3600/60, rem%60)
	if days == 0 {
		return clock
	}
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s, %s", days, unit, clock)
}

// padDuration left-pads short durations to a stable 8-char width, so
// single-digit hours render as 0H:MM:SS.
func padDuration(seconds int64) string {
	s := formatDuration(seconds)
	for len(s) < 8 {
		s = "0" + s
	}
	return s
}

func intPtr(v int) *int {
	return &v
}
