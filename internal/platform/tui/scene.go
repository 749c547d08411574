package tui

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-brawler/internal/core"
	"github.com/vovakirdan/tui-brawler/internal/framedata"
	"github.com/vovakirdan/tui-brawler/internal/sim"
	"github.com/vovakirdan/tui-brawler/internal/stage"
)

// hudRows is the number of screen rows reserved at the top for the HUD.
const hudRows = 3

// cameraMargin is the world-space padding around the stage platforms.
const cameraMargin = 14.0

var portGlyphs = [...]rune{'@', '&', '%', '#'}

var portColors = [...]core.Color{
	core.ColorCyan,
	core.ColorOrange,
	core.ColorMagenta,
	core.ColorGreen,
}

// Camera maps a world-space window onto the screen's cell grid below the HUD.
type Camera struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// CameraFor frames the stage's platforms with some margin. The vertical
// window keeps the main ground near the bottom so air play stays visible.
func CameraFor(st *stage.Definition) Camera {
	cam := Camera{MinX: -60, MaxX: 60, MinY: -20, MaxY: 70}
	if len(st.Platforms) == 0 {
		return cam
	}
	first := true
	var top float64
	for _, p := range st.Platforms {
		if first {
			cam.MinX, cam.MaxX, top = p.MinX, p.MaxX, p.Y
			first = false
			continue
		}
		cam.MinX = min(cam.MinX, p.MinX)
		cam.MaxX = max(cam.MaxX, p.MaxX)
		top = max(top, p.Y)
	}
	cam.MinX -= cameraMargin
	cam.MaxX += cameraMargin
	cam.MinY = st.Platforms[0].Y - 20
	for _, p := range st.Platforms {
		cam.MinY = min(cam.MinY, p.Y-20)
	}
	cam.MaxY = top + 50
	return cam
}

// project converts a world position to screen cell coordinates.
// The second return is false when the point is outside the camera window.
func (c Camera) project(s *core.Screen, p core.Vec3) (int, int, bool) {
	w := s.Width()
	h := s.Height() - hudRows
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	fx := (p.X - c.MinX) / (c.MaxX - c.MinX)
	fy := (p.Y - c.MinY) / (c.MaxY - c.MinY)
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	x := int(fx * float64(w-1))
	y := hudRows + int((1-fy)*float64(h-1))
	return x, y, true
}

// Scene binds the static pieces the per-tick renderer needs.
type Scene struct {
	Stage          *stage.Definition
	Camera         Camera
	TickRate       int
	TimeLimitTicks int // 0 = no time limit
}

// NewScene builds a scene for the given stage and match timing.
func NewScene(st *stage.Definition, tickRate, timeLimitTicks int) Scene {
	return Scene{
		Stage:          st,
		Camera:         CameraFor(st),
		TickRate:       tickRate,
		TimeLimitTicks: timeLimitTicks,
	}
}

// Draw renders one snapshot onto the screen buffer.
func (sc Scene) Draw(s *core.Screen, snap *sim.Snapshot) {
	s.Clear()
	sc.drawStage(s)
	for i := range snap.Fighters {
		sc.drawFighter(s, &snap.Fighters[i])
	}
	for i := range snap.Projectiles {
		sc.drawProjectile(s, &snap.Projectiles[i])
	}
	sc.drawHUD(s, snap)
	if snap.Finished {
		sc.drawFinishBanner(s, snap)
	}
}

func (sc Scene) drawStage(s *core.Screen) {
	for _, p := range sc.Stage.Platforms {
		glyph := '='
		color := core.ColorWhite
		if p.PassThrough {
			glyph = '-'
			color = core.ColorGray
		}
		x1, y1, ok1 := sc.Camera.project(s, core.Vec3{X: p.MinX, Y: p.Y})
		x2, _, ok2 := sc.Camera.project(s, core.Vec3{X: p.MaxX, Y: p.Y})
		if !ok1 || !ok2 {
			continue
		}
		s.DrawHLine(x1, y1, x2-x1+1, glyph, color)
	}
	for _, l := range sc.Stage.Ledges {
		if x, y, ok := sc.Camera.project(s, l.Pos); ok {
			s.SetColored(x, y, '+', core.ColorYellow)
		}
	}
}

func (sc Scene) drawFighter(s *core.Screen, f *sim.FighterState) {
	if f.Action == framedata.ActionKO {
		return
	}

	glyph := portGlyphs[f.Port%len(portGlyphs)]
	color := portColors[f.Port%len(portColors)]
	switch {
	case f.Intangible:
		color = core.ColorGray
	case f.Action == framedata.ActionHitstun || f.Action == framedata.ActionGrabbed:
		color = core.ColorRed
	}

	x, y, ok := sc.Camera.project(s, f.Pos)
	if !ok {
		sc.drawOffscreenMarker(s, f)
		return
	}

	// Body at the position, head one cell up.
	s.SetColored(x, y, glyph, color)
	s.SetColored(x, y-1, 'o', color)
	if f.FaceRight {
		s.SetColored(x+1, y-1, '>', color)
	} else {
		s.SetColored(x-1, y-1, '<', color)
	}
	if f.Shield > 0 && f.Action == framedata.ActionShield {
		s.SetColored(x-1, y, '(', core.ColorBlue)
		s.SetColored(x+1, y, ')', core.ColorBlue)
	}

	// Active attack and grab boxes flash at their world midpoints.
	for _, b := range f.Boxes {
		if b.Kind != framedata.Hitbox && b.Kind != framedata.Grabbox {
			continue
		}
		mid := b.P1.Add(b.P2).Scale(0.5)
		if bx, by, bok := sc.Camera.project(s, mid); bok {
			s.SetColored(bx, by, '*', core.ColorYellow)
		}
	}
}

func (sc Scene) drawProjectile(s *core.Screen, p *sim.ProjectileState) {
	if x, y, ok := sc.Camera.project(s, p.Pos); ok {
		s.SetColored(x, y, 'o', portColors[p.Port%len(portColors)])
	}
}

// drawOffscreenMarker points at a fighter outside the camera window so the
// player can track a launched opponent.
func (sc Scene) drawOffscreenMarker(s *core.Screen, f *sim.FighterState) {
	color := portColors[f.Port%len(portColors)]
	clampX := core.ClampF(f.Pos.X, sc.Camera.MinX, sc.Camera.MaxX)
	clampY := core.ClampF(f.Pos.Y, sc.Camera.MinY, sc.Camera.MaxY)
	x, y, ok := sc.Camera.project(s, core.Vec3{X: clampX, Y: clampY})
	if !ok {
		return
	}
	marker := 'v'
	if f.Pos.Y > sc.Camera.MaxY {
		marker = '^'
	} else if f.Pos.X < sc.Camera.MinX {
		marker = '<'
	} else if f.Pos.X > sc.Camera.MaxX {
		marker = '>'
	}
	s.SetColored(x, y, marker, color)
}

func (sc Scene) drawHUD(s *core.Screen, snap *sim.Snapshot) {
	n := len(snap.Fighters)
	if n == 0 {
		return
	}
	colWidth := s.Width() / n
	for i := range snap.Fighters {
		f := &snap.Fighters[i]
		block := fmt.Sprintf("P%d %s %3.0f%% %s",
			f.Port+1, f.Character, f.Damage, strings.Repeat("*", f.Stocks))
		s.DrawTextColored(i*colWidth+1, 0, block, portColors[f.Port%len(portColors)])

		shield := fmt.Sprintf("shield %s", shieldBar(f.Shield, 10))
		s.DrawTextColored(i*colWidth+1, 1, shield, core.ColorBlue)
	}

	status := fmt.Sprintf("tick %d", snap.Tick)
	if sc.TimeLimitTicks > 0 && sc.TickRate > 0 {
		remaining := sc.TimeLimitTicks - snap.Tick
		if remaining < 0 {
			remaining = 0
		}
		secs := remaining / sc.TickRate
		status = fmt.Sprintf("%d:%02d  %s", secs/60, secs%60, status)
	}
	s.DrawTextColored(s.Width()-len(status)-1, 2, status, core.ColorGray)
}

// shieldBar renders shield integrity as a fixed-width bar. Shield HP varies
// per character; the bar saturates at 50.
func shieldBar(hp float64, width int) string {
	filled := int(hp / 50 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func (sc Scene) drawFinishBanner(s *core.Screen, snap *sim.Snapshot) {
	mid := s.Height() / 2
	if snap.Winner >= 0 {
		name := ""
		if f := snap.Fighter(snap.Winner); f != nil {
			name = " (" + f.Character + ")"
		}
		s.DrawTextCentered(mid-1, fmt.Sprintf("GAME!  P%d%s wins", snap.Winner+1, name))
	} else {
		s.DrawTextCentered(mid-1, "GAME!  Draw")
	}
	s.DrawTextCentered(mid+1, "r: rematch   esc: back   q: quit")
}
