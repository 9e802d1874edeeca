package model

// AttackStatus classifies the result of a single shot
type AttackStatus string

const (
	AttackMiss   AttackStatus = "miss"
	AttackShot   AttackStatus = "shot"   // Hit, ship still afloat
	AttackKilled AttackStatus = "killed" // Hit, ship destroyed
)

// IsHit returns true for shot and killed
func (s AttackStatus) IsHit() bool {
	return s == AttackShot || s == AttackKilled
}

// AttackOutcome is everything observable about a resolved attack
type AttackOutcome struct {
	Position Position
	Attacker PlayerIndex
	Status   AttackStatus
	NextTurn PlayerIndex
	Repeated bool  // Cell had already been hit; reported as a miss
	Ship     *Ship // Ship that was hit, nil on miss
	Finished bool
	Winner   PlayerIndex
}

// FinishReason explains how a game ended
type FinishReason string

const (
	FinishFleetDestroyed FinishReason = "fleet_destroyed"
	FinishForfeit        FinishReason = "forfeit"
)

// FinishOutcome describes a finished game
type FinishOutcome struct {
	Winner PlayerIndex
	Reason FinishReason
}
