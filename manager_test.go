// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialFakeEngine connects to the manager's listener and acts as a
// minimal engine: it sends init immediately and answers every command
// with the response that handler returns for it.
func dialFakeEngine(t *testing.T, addr string, idekey string, handler func(pc parsedCommand) string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	writeFrame(t, conn, `<init appid="1" idekey="`+idekey+`" session="s" language="PHP" protocol_version="1" fileuri="file:///a.php"/>`)

	go fakeEngine(t, conn, handler)
	return conn
}

func ackAllHandler(pc parsedCommand) string {
	return `<response command="` + pc.Name + `" transaction_id="%TX%" success="1"/>`
}

func startManager(t *testing.T, events ManagerEvents) (*Manager, string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := NewConfig()
	cfg.CommandTimeout = time.Second
	m := NewManager(cfg, nil, events)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Serve(ctx, ln)

	return m, ln.Addr().String(), cancel
}

func TestManagerRegistersSessionOnInit(t *testing.T) {
	created := make(chan *Session, 1)
	m, addr, cancel := startManager(t, ManagerEvents{OnSessionCreated: func(s *Session) { created <- s }})
	defer cancel()

	conn := dialFakeEngine(t, addr, "k1", ackAllHandler)
	defer conn.Close()

	select {
	case sess := <-created:
		assert.Equal(t, "k1", sess.InitRecord().IDEKey)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not created")
	}

	sessions := m.Sessions()
	require.Len(t, sessions, 1)
}

func TestManagerActiveElectionPrefersBreak(t *testing.T) {
	created := make(chan *Session, 2)
	m, addr, cancel := startManager(t, ManagerEvents{OnSessionCreated: func(s *Session) { created <- s }})
	defer cancel()

	conn1 := dialFakeEngine(t, addr, "first", ackAllHandler)
	defer conn1.Close()
	sess1 := <-created

	conn2 := dialFakeEngine(t, addr, "second", func(pc parsedCommand) string {
		if pc.Name == "run" {
			return `<response command="run" transaction_id="%TX%" status="break" reason="ok"/>`
		}
		return ackAllHandler(pc)
	})
	defer conn2.Close()
	sess2 := <-created

	_, err := sess2.Run(context.Background())
	require.NoError(t, err)

	active, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, sess2.ID, active.ID)
	_ = sess1
}

func TestManagerSetActiveOverridesElection(t *testing.T) {
	created := make(chan *Session, 1)
	m, addr, cancel := startManager(t, ManagerEvents{OnSessionCreated: func(s *Session) { created <- s }})
	defer cancel()

	conn := dialFakeEngine(t, addr, "k", ackAllHandler)
	defer conn.Close()
	sess := <-created

	require.NoError(t, m.SetActive(sess.ID))
	active, err := m.Active()
	require.NoError(t, err)
	assert.Equal(t, sess.ID, active.ID)

	assert.ErrorIs(t, m.SetActive("does-not-exist"), ErrNoSession)
}

func TestManagerByFilenameAndIDEKey(t *testing.T) {
	created := make(chan *Session, 1)
	m, addr, cancel := startManager(t, ManagerEvents{OnSessionCreated: func(s *Session) { created <- s }})
	defer cancel()

	conn := dialFakeEngine(t, addr, "mykey", ackAllHandler)
	defer conn.Close()
	<-created

	byFile := m.ByFilename("a.php")
	require.Len(t, byFile, 1)

	byKey := m.ByIDEKey("mykey")
	require.Len(t, byKey, 1)

	assert.Empty(t, m.ByIDEKey("nope"))
}

func TestManagerCloseSessionRemovesIt(t *testing.T) {
	created := make(chan *Session, 1)
	closedCh := make(chan *Session, 1)
	m, addr, cancel := startManager(t, ManagerEvents{
		OnSessionCreated: func(s *Session) { created <- s },
		OnSessionClosed:  func(s *Session) { closedCh <- s },
	})
	defer cancel()

	conn := dialFakeEngine(t, addr, "k", ackAllHandler)
	defer conn.Close()
	sess := <-created

	require.NoError(t, m.CloseSession(sess.ID))

	select {
	case closed := <-closedCh:
		assert.Equal(t, sess.ID, closed.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("OnSessionClosed did not fire")
	}

	assert.Empty(t, m.Sessions())
	assert.ErrorIs(t, m.CloseSession(sess.ID), ErrNoSession)
}

func TestManagerPendingBreakpointsAppliedOnAttach(t *testing.T) {
	var gotLine string
	m, addr, cancel := startManager(t, ManagerEvents{})
	defer cancel()

	m.Pending().AddLine("/x/y.s", 10, "", time.Now())

	created := make(chan struct{}, 1)
	conn := dialFakeEngine(t, addr, "k", func(pc parsedCommand) string {
		if pc.Name == "breakpoint_set" {
			gotLine = pc.Args["n"]
			created <- struct{}{}
			return `<response command="breakpoint_set" transaction_id="%TX%" id="1" resolved="1"/>`
		}
		return ackAllHandler(pc)
	})
	defer conn.Close()

	select {
	case <-created:
		assert.Equal(t, "10", gotLine)
	case <-time.After(2 * time.Second):
		t.Fatal("pending breakpoint was not applied")
	}
}
