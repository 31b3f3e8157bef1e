package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/frontend/telnet"
	"github.com/cory-johannsen/grue/internal/game/action"
)

const roomText = "West of House\nYou are standing in an open field west of a white house, with a boarded front door.\nExits: north."

func TestRenderer_RoomPlain(t *testing.T) {
	r := Renderer{}
	assert.Equal(t, roomText, r.Room(roomText))
}

func TestRenderer_RoomColor(t *testing.T) {
	r := Renderer{Color: true}
	out := r.Room(roomText)
	assert.True(t, strings.HasPrefix(out, telnet.RoomTitle.Paint("West of House")))
	assert.Contains(t, out, telnet.ExitList.Paint("Exits: north."))
	assert.Equal(t, roomText, telnet.Plain(out))
}

func TestRenderer_DarkRoomHasNoTitle(t *testing.T) {
	r := Renderer{Color: true}
	out := r.Room("It is pitch black.")
	assert.Equal(t, "It is pitch black.", out)
}

func TestRenderer_Wraps(t *testing.T) {
	r := Renderer{Width: 30}
	out := r.Room(roomText)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 30, "line %q", line)
	}
	assert.True(t, strings.HasPrefix(out, "West of House\n"))
}

func TestRenderer_ResultWithNotifications(t *testing.T) {
	res := action.OK("Taken.")
	res.Notify("Your lamp is getting dim.")
	assert.Equal(t, "Taken.\nYour lamp is getting dim.", Renderer{}.Result(res))

	colored := Renderer{Color: true}.Result(res)
	assert.Contains(t, colored, telnet.Notification.Paint("Your lamp is getting dim."))
}

func TestRenderer_ResultStyles(t *testing.T) {
	r := Renderer{Color: true}
	fault := action.Result{Message: "Something went wrong.", Fault: true}
	assert.Equal(t, telnet.Fault.Paint("Something went wrong."), r.Result(fault))

	moved := action.Result{Success: true, RoomChanged: true, Message: roomText}
	assert.Equal(t, r.Room(roomText), r.Result(moved))

	assert.Empty(t, r.Result(action.Result{}))
}

func TestRenderer_RefusalAndNotice(t *testing.T) {
	r := Renderer{Color: true}
	assert.Equal(t, telnet.Refusal.Paint("The door is locked."), r.Result(action.Fail("The door is locked.")))
	assert.Equal(t, telnet.Notice.Paint("Welcome back."), r.Notice("Welcome back."))
	assert.Equal(t, "Welcome back.", Renderer{}.Notice("Welcome back."))
}

func TestNormalizeInput(t *testing.T) {
	assert.Equal(t, "take lamp", NormalizeInput("  ｔａｋｅ　ｌａｍｐ \r"))
	assert.Equal(t, "go north", NormalizeInput("go north"))
}

func TestPropertyWrapPreservesWords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 1, 30).Draw(t, "words")
		width := rapid.IntRange(10, 80).Draw(t, "width")
		text := strings.Join(words, " ")
		out := Renderer{Width: width}.Result(action.OK(text))
		if got := strings.Fields(out); strings.Join(got, " ") != text {
			t.Fatalf("wrapping changed words: %q -> %q", text, out)
		}
	})
}
