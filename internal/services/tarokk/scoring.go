package tarokk

import (
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// WinThreshold は宣言者チームの勝利に必要なカード点数（94点中48点）です。
// BaselineScore は各プレイヤーの持ち点の基準値です。
const (
	WinThreshold  = 48
	BaselineScore = 50
)

// AnnouncementOutcome は精算結果に含まれる宣言1件の明細です。
// 失敗した宣言のPointsは負の値（ペナルティ）になります。
type AnnouncementOutcome struct {
	Type           tarokk.AnnouncementType `json:"type"`
	PlayerPosition int                     `json:"player_position"`
	Announced      bool                    `json:"announced"`
	Points         int                     `json:"points"`
	Achieved       bool                    `json:"achieved"`
	Contra         bool                    `json:"contra"`
	Recontra       bool                    `json:"recontra"`
}

// Settlement は1ハンドの完全な精算結果です。game_overイベントで全送信されます。
type Settlement struct {
	DeclarerTeamPoints int                     `json:"declarer_team_points"`
	OpponentTeamPoints int                     `json:"opponent_team_points"`
	Winner             string                  `json:"winner"` // "declarer_team" / "opponent_team"
	BaseGameValue      int                     `json:"base_game_value"`
	GameMultiplier     int                     `json:"game_multiplier"`
	FinalGameValue     int                     `json:"final_game_value"`
	PlayerScores       [NumPlayers]int         `json:"player_scores"` // 基準50点からの最終持ち点
	Achieved           []*tarokk.Announcement  `json:"achieved_announcements"`
	Failed             []*tarokk.Announcement  `json:"failed_announcements"`
	Details            []AnnouncementOutcome   `json:"announcement_details"`
}

// CalculateTeamScores は両チームのカード点数を計算します。
//
// ハンガリアンタロックの特則:
//   - 宣言者チーム: 宣言者のトリック + パートナーのトリック + 宣言者の捨て札のみ
//   - 相手チーム: 残り2人のトリック + それ以外のすべての捨て札
//     （パートナーの捨て札は相手チームに数えられます）
func CalculateTeamScores(players []*tarokk.Player, declarerPosition, partnerPosition int) (int, int) {
	declarerTeam := 0
	opponentTeam := 0

	for _, p := range players {
		tricksPoints := tarokk.TotalPoints(p.TricksWon)
		discardPoints := tarokk.TotalPoints(p.DiscardPile)

		switch p.Position {
		case declarerPosition:
			declarerTeam += tricksPoints + discardPoints
		case partnerPosition:
			declarerTeam += tricksPoints
			opponentTeam += discardPoints
		default:
			opponentTeam += tricksPoints + discardPoints
		}
	}

	return declarerTeam, opponentTeam
}

// CalculateFinalScore は宣言の達成判定・倍率・コントラを含む完全な精算を行います。
//
// 各プレイヤーは50点から始まります。敗北チームの各メンバーは勝利チームの
// 各メンバーに最終ゲーム値を支払います（各席の増減は最終ゲーム値×相手チーム
// の人数）。達成された宣言は相手チームの各メンバーから点数を受け取り、
// 失敗した宣言は相手チームの各メンバーに点数を支払います。すべての支払いは
// ペアごとの授受なので、4席の増減の合計は常に0です。
func CalculateFinalScore(
	players []*tarokk.Player,
	declarerPosition, partnerPosition int,
	winningBid tarokk.Bid,
	announcements []*tarokk.Announcement,
	trickHistory []tarokk.TrickRecord,
) *Settlement {
	declarerTeamPoints, opponentTeamPoints := CalculateTeamScores(players, declarerPosition, partnerPosition)

	declarerWon := declarerTeamPoints >= WinThreshold
	winner := "opponent_team"
	if declarerWon {
		winner = "declarer_team"
	}

	var achieved, failed []*tarokk.Announcement
	for _, a := range announcements {
		if CheckAnnouncementAchieved(a, players, declarerPosition, partnerPosition, trickHistory, declarerTeamPoints, opponentTeamPoints) {
			achieved = append(achieved, a)
		} else {
			failed = append(failed, a)
		}
	}
	achieved = append(achieved, SilentAchievements(players, announcements)...)

	// ゲーム倍率: 宣言されたダブルゲーム(×2)・ヴォラート(×3)のうち最大の1つを
	// 適用します。累積はしません。コントラは倍率には作用しません。
	baseGameValue := winningBid.GameValue
	gameMultiplier := 1
	for _, a := range achieved {
		if m := a.Multiplier(); m > gameMultiplier {
			gameMultiplier = m
		}
	}
	finalGameValue := baseGameValue * gameMultiplier

	isDeclarerTeam := func(pos int) bool {
		return pos == declarerPosition || pos == partnerPosition
	}

	var scores [NumPlayers]int
	for i := range scores {
		scores[i] = BaselineScore
	}

	// 基本ゲームの支払い: 敗北チームの各メンバーが勝利チームの各メンバーに
	// 最終ゲーム値を支払います。宣言者が自分のカードを呼んだ場合は1人対3人に
	// なるため、各席の増減は最終ゲーム値×相手チームの人数です。
	declarerTeamSize := 1
	if partnerPosition != declarerPosition {
		declarerTeamSize = 2
	}
	opponentTeamSize := NumPlayers - declarerTeamSize

	for i := 0; i < NumPlayers; i++ {
		opposingSize := opponentTeamSize
		if !isDeclarerTeam(i) {
			opposingSize = declarerTeamSize
		}
		if isDeclarerTeam(i) == declarerWon {
			scores[i] += finalGameValue * opposingSize
		} else {
			scores[i] -= finalGameValue * opposingSize
		}
	}

	var details []AnnouncementOutcome

	for _, a := range achieved {
		points := a.Points()
		for i := 0; i < NumPlayers; i++ {
			if isDeclarerTeam(i) != isDeclarerTeam(a.PlayerPosition) {
				scores[a.PlayerPosition] += points
				scores[i] -= points
			}
		}
		details = append(details, AnnouncementOutcome{
			Type:           a.Type,
			PlayerPosition: a.PlayerPosition,
			Announced:      a.Announced,
			Points:         points,
			Achieved:       true,
			Contra:         a.Contra,
			Recontra:       a.Recontra,
		})
	}

	for _, a := range failed {
		points := a.Points()
		for i := 0; i < NumPlayers; i++ {
			if isDeclarerTeam(i) != isDeclarerTeam(a.PlayerPosition) {
				scores[a.PlayerPosition] -= points
				scores[i] += points
			}
		}
		details = append(details, AnnouncementOutcome{
			Type:           a.Type,
			PlayerPosition: a.PlayerPosition,
			Announced:      a.Announced,
			Points:         -points,
			Achieved:       false,
			Contra:         a.Contra,
			Recontra:       a.Recontra,
		})
	}

	return &Settlement{
		DeclarerTeamPoints: declarerTeamPoints,
		OpponentTeamPoints: opponentTeamPoints,
		Winner:             winner,
		BaseGameValue:      baseGameValue,
		GameMultiplier:     gameMultiplier,
		FinalGameValue:     finalGameValue,
		PlayerScores:       scores,
		Achieved:           achieved,
		Failed:             failed,
		Details:            details,
	}
}
