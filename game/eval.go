package game

// Evaluate scores a position between -1 and 1 from the Sherman's point of view.
type Evaluate func(*GameState) float64

// EvaluateMaterial compares the Sherman's remaining fighting strength with the
// enemy's, to produce a score between -1 and 1.
func EvaluateMaterial(gs *GameState) float64 {
	switch gs.Phase() {
	case Victory:
		return 1
	case Defeat:
		return -1
	}
	own, enemy := gs.materialScores()
	return normalize(own, enemy)
}

// EvaluateThreat adds how exposed the Sherman is, in addition to material.
func EvaluateThreat(gs *GameState) float64 {
	if gs.Phase().Terminal() {
		return EvaluateMaterial(gs)
	}
	own, enemy := gs.materialScores()
	threat := gs.threatScore()
	return (normalize(own, enemy) + threat) / 2
}

// materialScores weighs each side's vehicles by how intact they are.
func (gs *GameState) materialScores() (own, enemy float64) {
	for _, v := range gs.Scenario.Vehicles {
		if v.Destroyed {
			continue
		}
		if v.IsPlayer() {
			own += shermanStrength(v)
		} else {
			enemy += enemyStrength(v)
		}
	}
	return own, enemy
}

// shermanStrength starts at 1 per tank and loses weight for each crippling effect.
func shermanStrength(v *Vehicle) float64 {
	s := 1.0
	for _, st := range Stations {
		if !v.Crew.Alive(st) {
			s -= 0.1
		}
	}
	if v.TurretDamaged {
		s -= 0.2
	}
	if v.Immobilized {
		s -= 0.15
	}
	s -= 0.1 * float64(v.FireLevel)
	return max(s, 0.05)
}

func enemyStrength(v *Vehicle) float64 {
	if v.Damaged {
		return 0.5
	}
	return 1
}

// threatScore is 1 when no enemy can fire on the Sherman and -1 when all can.
func (gs *GameState) threatScore() float64 {
	sherman := gs.Sherman()
	enemies := gs.Scenario.Enemies()
	if len(enemies) == 0 {
		return 1
	}
	threats := 0
	for _, e := range enemies {
		for _, target := range gs.TargetsInArc(e) {
			if target == sherman {
				threats++
			}
		}
	}
	return normalize(float64(len(enemies)-threats), float64(threats))
}

func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}
