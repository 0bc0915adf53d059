// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeSimple(t *testing.T) {
	node, err := ParseNode([]byte(`<init appid="1" idekey="k" session="s"/>`))
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.Equal(t, "init", node.Name)
	assert.Equal(t, "1", node.Attribute("appid"))
	assert.Equal(t, "k", node.Attribute("idekey"))
	assert.Equal(t, "s", node.Attribute("session"))
}

func TestParseNodeNestedChildren(t *testing.T) {
	xmlPayload := `<response command="breakpoint_set" transaction_id="2">
		<error code="200"><message>breakpoint could not be set</message></error>
	</response>`

	node, err := ParseNode([]byte(xmlPayload))
	require.NoError(t, err)

	errNode := node.Child("error")
	require.NotNil(t, errNode)
	assert.Equal(t, "200", errNode.Attribute("code"))

	msgNode := errNode.Child("message")
	require.NotNil(t, msgNode)
	assert.Equal(t, "breakpoint could not be set", msgNode.Text)
}

func TestParseNodeLikeNamedSiblings(t *testing.T) {
	xmlPayload := `<response command="stack_get" transaction_id="3">
		<stack level="0" filename="file:///a.x" lineno="5"/>
		<stack level="1" filename="file:///a.x" lineno="10"/>
	</response>`

	node, err := ParseNode([]byte(xmlPayload))
	require.NoError(t, err)

	frames := node.ChildrenByName("stack")
	require.Len(t, frames, 2)
	assert.Equal(t, "0", frames[0].Attribute("level"))
	assert.Equal(t, "1", frames[1].Attribute("level"))
}

func TestParseNodeNamespacedElement(t *testing.T) {
	xmlPayload := `<response command="run" transaction_id="1" status="break">
		<xdebug:message filename="file:///a.x" lineno="5"/>
	</response>`

	node, err := ParseNode([]byte(xmlPayload))
	require.NoError(t, err)

	msg := node.Child("message")
	require.NotNil(t, msg)
	assert.Equal(t, "file:///a.x", msg.Attribute("filename"))
}
