// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parsedCommand is a decoded DBGp command line as a test fake engine
// would see it on the wire.
type parsedCommand struct {
	Name string
	TxID string
	Args map[string]string
	Data string
}

func parseCommandLine(line string) parsedCommand {
	fields := strings.Fields(line)
	pc := parsedCommand{Args: make(map[string]string)}
	if len(fields) == 0 {
		return pc
	}
	pc.Name = fields[0]
	i := 1
	for i < len(fields) {
		if fields[i] == "--" {
			if i+1 < len(fields) {
				pc.Data = fields[i+1]
			}
			break
		}
		if strings.HasPrefix(fields[i], "-") && i+1 < len(fields) {
			key := strings.TrimPrefix(fields[i], "-")
			if key == "i" {
				pc.TxID = fields[i+1]
			} else {
				pc.Args[key] = fields[i+1]
			}
			i += 2
			continue
		}
		i++
	}
	return pc
}

// fakeEngine serves commands off engine, replying via handler.
// handler returns the raw XML to send back (transaction_id is filled in
// by the caller using the parsed command's id if the placeholder
// "%TX%" appears).
func fakeEngine(t *testing.T, engine net.Conn, handler func(pc parsedCommand) string) {
	t.Helper()
	dec := NewFrameDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := engine.Read(buf)
		if err != nil {
			return
		}
		dec.Feed(buf[:n])
		for {
			payload, ok := dec.Next()
			if !ok {
				break
			}
			pc := parseCommandLine(string(payload))
			xml := handler(pc)
			xml = strings.ReplaceAll(xml, "%TX%", pc.TxID)
			if _, err := engine.Write(EncodeFrame([]byte(xml))); err != nil {
				return
			}
		}
	}
}

func newAttachedSession(t *testing.T, handler func(pc parsedCommand) string) (*Session, net.Conn, func()) {
	t.Helper()
	client, engine := net.Pipe()

	cfg := NewConfig()
	cfg.CommandTimeout = time.Second
	conn := NewConnection(client, cfg, nil, Events{})

	sess := NewSession("span-1", conn, cfg, nil)
	conn.events.OnResponse = sess.updateFromResponse

	ctx, cancel := context.WithCancel(context.Background())
	go conn.Run(ctx)
	go fakeEngine(t, engine, handler)

	writeFrame(t, engine, `<init appid="1" idekey="k" session="s" language="PHP" protocol_version="1" fileuri="file:///a.php"/>`)

	require.NoError(t, sess.Attach(context.Background()))

	return sess, engine, func() {
		cancel()
		client.Close()
		engine.Close()
	}
}

func TestSessionAttachNegotiatesFeatures(t *testing.T) {
	var seen []string
	sess, _, cleanup := newAttachedSession(t, func(pc parsedCommand) string {
		if pc.Name == "feature_set" {
			seen = append(seen, pc.Args["n"])
		}
		return `<response command="feature_set" transaction_id="%TX%" success="1"/>`
	})
	defer cleanup()

	assert.ElementsMatch(t, []string{"max_depth", "max_children", "max_data", "show_hidden"}, seen)
	assert.Equal(t, "k", sess.InitRecord().IDEKey)
}

func TestSessionRunUpdatesStatusAndLocation(t *testing.T) {
	sess, _, cleanup := newAttachedSession(t, func(pc parsedCommand) string {
		switch pc.Name {
		case "feature_set":
			return `<response command="feature_set" transaction_id="%TX%" success="1"/>`
		case "run":
			return `<response command="run" transaction_id="%TX%" status="break" reason="ok"><xdebug:message filename="file:///a.php" lineno="5"/></response>`
		}
		return `<response command="` + pc.Name + `" transaction_id="%TX%" success="1"/>`
	})
	defer cleanup()

	res, err := sess.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusBreak, res.Status)
	assert.Equal(t, "file:///a.php", res.File)
	assert.Equal(t, 5, res.Line)

	assert.Equal(t, StatusBreak, sess.Status())
	file, line := sess.Location()
	assert.Equal(t, "file:///a.php", file)
	assert.Equal(t, 5, line)
}

func TestSessionOnStateChangeFires(t *testing.T) {
	changes := make(chan Status, 4)
	sess, _, cleanup := newAttachedSession(t, func(pc parsedCommand) string {
		if pc.Name == "run" {
			return `<response command="run" transaction_id="%TX%" status="break" reason="ok"/>`
		}
		return `<response command="` + pc.Name + `" transaction_id="%TX%" success="1"/>`
	})
	defer cleanup()
	sess.OnStateChange = func(s *Session) { changes <- s.Status() }

	_, err := sess.Run(context.Background())
	require.NoError(t, err)

	select {
	case st := <-changes:
		assert.Equal(t, StatusBreak, st)
	case <-time.After(time.Second):
		t.Fatal("OnStateChange did not fire")
	}
}

func TestSessionMarkStoppedOnClose(t *testing.T) {
	sess, _, cleanup := newAttachedSession(t, func(pc parsedCommand) string {
		return `<response command="` + pc.Name + `" transaction_id="%TX%" success="1"/>`
	})
	defer cleanup()

	sess.markStopped()
	assert.Equal(t, StatusStopped, sess.Status())
}

func TestSessionTypeMapAndRedirectStdin(t *testing.T) {
	sess, _, cleanup := newAttachedSession(t, func(pc parsedCommand) string {
		switch pc.Name {
		case "typemap_get":
			return `<response command="typemap_get" transaction_id="%TX%"><map name="int" type="int"/></response>`
		}
		return `<response command="` + pc.Name + `" transaction_id="%TX%" success="1"/>`
	})
	defer cleanup()

	types, err := sess.TypeMap(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "int", types[0].Name)

	require.NoError(t, sess.RedirectStdin(context.Background(), "1"))
	require.NoError(t, sess.RedirectStdout(context.Background(), "1"))
	require.NoError(t, sess.RedirectStderr(context.Background(), "1"))
}
