// Package login implements the login request: payload parsing, the
// credential and account-state checks, session creation under the
// tokens lock, and assembly of the packet response.
package login

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LoginData is the parsed login request body.
type LoginData struct {
	Username         string
	PasswordMD5      string
	OsuVersion       string
	UTCOffset        int
	DisplayCity      bool
	PMPrivate        bool
	ClientMD5        string
	AdaptersStr      string
	AdaptersMD5      string
	UninstallMD5     string
	DiskSignatureMD5 string
}

// ParseLoginData splits the textual login body. Line 1 is the username,
// line 2 the password md5, line 3 packs client fields separated by "|"
// with a ":"-joined hash blob in the middle.
func ParseLoginData(body []byte) (LoginData, error) {
	lines := strings.SplitN(string(body), "\n", 3)
	if len(lines) != 3 {
		return LoginData{}, fmt.Errorf("parsing login body: expected 3 lines, got %d", len(lines))
	}
	username, passwordMD5, remainder := lines[0], lines[1], lines[2]

	fields := strings.SplitN(remainder, "|", 5)
	if len(fields) != 5 {
		return LoginData{}, fmt.Errorf("parsing login body: expected 5 client fields, got %d", len(fields))
	}

	utcOffset, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return LoginData{}, fmt.Errorf("parsing login body: utc offset: %w", err)
	}
	displayCity, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return LoginData{}, fmt.Errorf("parsing login body: display city: %w", err)
	}
	// The last field carries the body's trailing newline.
	pmPrivate, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return LoginData{}, fmt.Errorf("parsing login body: pm private: %w", err)
	}

	// The hash blob ends with a separator, so drop the final ":" before
	// splitting out the five hashes.
	hashBlob := fields[3]
	if len(hashBlob) > 0 {
		hashBlob = hashBlob[:len(hashBlob)-1]
	}
	hashes := strings.SplitN(hashBlob, ":", 5)
	if len(hashes) != 5 {
		return LoginData{}, fmt.Errorf("parsing login body: expected 5 client hashes, got %d", len(hashes))
	}

	return LoginData{
		Username:         username,
		PasswordMD5:      passwordMD5,
		OsuVersion:       fields[0],
		UTCOffset:        utcOffset,
		DisplayCity:      displayCity != 0,
		PMPrivate:        pmPrivate != 0,
		ClientMD5:        hashes[0],
		AdaptersStr:      hashes[1],
		AdaptersMD5:      hashes[2],
		UninstallMD5:     hashes[3],
		DiskSignatureMD5: hashes[4],
	}, nil
}

// clientVersionRegex matches osu! release names: b<yyyymmdd>, an
// optional subversion, and an optional release stream tag.
var clientVersionRegex = regexp.MustCompile(`^b(\d{8})(?:\.(\d))?(beta|cuttingedge|dev|tourney)?$`)

// ClientVersion is the decomposed osu_version login field.
type ClientVersion struct {
	Date   time.Time
	Stream string
}

// ParseClientVersion validates the version against the release-name
// grammar and extracts the build date and stream.
func ParseClientVersion(osuVersion string) (ClientVersion, error) {
	m := clientVersionRegex.FindStringSubmatch(osuVersion)
	if m == nil {
		return ClientVersion{}, fmt.Errorf("malformed client version %q", osuVersion)
	}

	year, _ := strconv.Atoi(m[1][:4])
	month, _ := strconv.Atoi(m[1][4:6])
	day, _ := strconv.Atoi(m[1][6:8])

	return ClientVersion{
		Date:   time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Stream: m[3],
	}, nil
}

// Tournament reports whether the client is a tournament build, which is
// allowed to hold multiple sessions at once.
func (v ClientVersion) Tournament() bool {
	return v.Stream == "tourney"
}

// Outdated reports whether the build is more than a year older than now.
func (v ClientVersion) Outdated(now time.Time) bool {
	return v.Date.Before(now.AddDate(0, 0, -365))
}
