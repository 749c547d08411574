package framedata

import "github.com/vovakirdan/tui-brawler/internal/core"

// BonePositions resolves the skeleton to world space for a fighter at the
// given position and facing, applying the frame's pose overrides. The
// returned slice is indexed like Skeleton.
func (c *CharacterDef) BonePositions(pos core.Vec3, faceRight bool, pose map[int]core.Vec3) []core.Vec3 {
	out := make([]core.Vec3, len(c.Skeleton))
	for i, b := range c.Skeleton {
		local := b.Offset
		if override, ok := pose[i]; ok {
			local = local.Add(override)
		}
		if !faceRight {
			local = local.MirrorX()
		}
		if b.Parent < 0 {
			out[i] = pos.Add(local)
		} else {
			out[i] = out[b.Parent].Add(local)
		}
	}
	return out
}

// WorldPoint maps a bone-local point to world space given the resolved bone
// positions and the fighter's facing.
func WorldPoint(bones []core.Vec3, bone int, local core.Vec3, faceRight bool) core.Vec3 {
	if !faceRight {
		local = local.MirrorX()
	}
	return bones[bone].Add(local)
}
