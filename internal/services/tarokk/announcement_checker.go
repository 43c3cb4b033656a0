package tarokk

import (
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// CheckTrull はプレイヤーが獲得トリックでオナー3枚すべてを集めたかどうかを
// 判定します。
func CheckTrull(player *tarokk.Player) bool {
	ranks := map[string]bool{}
	honours := 0
	for _, c := range player.TricksWon {
		if c.IsHonour() {
			honours++
			ranks[c.Rank] = true
		}
	}
	return honours == 3 && ranks[tarokk.RankSkiz] && ranks[tarokk.RankXXI] && ranks[tarokk.RankPagat]
}

// CheckFourKings はプレイヤーが獲得トリックでキング4枚すべてを集めたかどうかを
// 判定します。
func CheckFourKings(player *tarokk.Player) bool {
	kings := 0
	for _, c := range player.TricksWon {
		if c.IsKing() {
			kings++
		}
	}
	return kings == 4
}

// CheckDoubleGame はチームがダブルゲーム（71点以上）を達成したかどうかを判定します。
func CheckDoubleGame(teamPoints int) bool {
	return teamPoints >= 71
}

// CheckVolat はチームが全9トリックを取ったかどうかを判定します。
func CheckVolat(teamTricks int) bool {
	return teamTricks == 9
}

// CheckPagatUltimo はパガートが最終トリック（9トリック目）を取り、
// それを宣言者自身が出していたかどうかを判定します。
func CheckPagatUltimo(trickHistory []tarokk.TrickRecord, playerPosition int) bool {
	if len(trickHistory) < 9 {
		return false
	}

	lastTrick := trickHistory[8]
	if lastTrick.WinnerPosition != playerPosition {
		return false
	}

	for _, play := range lastTrick.Plays {
		if play.PlayerPosition == playerPosition {
			if play.Card.IsTarokk() && play.Card.Rank == tarokk.RankPagat {
				return true
			}
		}
	}
	return false
}

// CheckXXICatch はスキーズが相手のXXIをいずれかのトリックで捕まえたかどうかを
// 判定します。宣言者が勝ったトリックで、宣言者がスキーズを出し、相手がXXIを
// 出していた場合に成立します。
func CheckXXICatch(trickHistory []tarokk.TrickRecord, playerPosition int) bool {
	for _, trick := range trickHistory {
		if trick.WinnerPosition != playerPosition {
			continue
		}

		playedSkiz := false
		opponentPlayedXXI := false
		for _, play := range trick.Plays {
			if !play.Card.IsTarokk() {
				continue
			}
			if play.PlayerPosition == playerPosition {
				if play.Card.Rank == tarokk.RankSkiz {
					playedSkiz = true
				}
			} else if play.Card.Rank == tarokk.RankXXI {
				opponentPlayedXXI = true
			}
		}

		if playedSkiz && opponentPlayedXXI {
			return true
		}
	}
	return false
}

// CheckAnnouncementAchieved は宣言が実際に達成されたかどうかを判定します。
//
// Parameters:
//   a                  : 判定対象の宣言
//   players            : 全プレイヤー
//   declarerPosition   : 宣言者チームの判定に使用
//   partnerPosition    : 同上
//   trickHistory       : 全トリックの記録
//   declarerTeamPoints : 宣言者チームのカード点数
//   opponentTeamPoints : 相手チームのカード点数
func CheckAnnouncementAchieved(
	a *tarokk.Announcement,
	players []*tarokk.Player,
	declarerPosition, partnerPosition int,
	trickHistory []tarokk.TrickRecord,
	declarerTeamPoints, opponentTeamPoints int,
) bool {
	player := players[a.PlayerPosition]
	isDeclarerTeam := player.Position == declarerPosition || player.Position == partnerPosition

	switch a.Type {
	case tarokk.AnnouncementTrull:
		return CheckTrull(player)
	case tarokk.AnnouncementFourKings:
		return CheckFourKings(player)
	case tarokk.AnnouncementDoubleGame:
		if isDeclarerTeam {
			return CheckDoubleGame(declarerTeamPoints)
		}
		return CheckDoubleGame(opponentTeamPoints)
	case tarokk.AnnouncementVolat:
		teamTricks := 0
		for _, p := range players {
			onDeclarerTeam := p.Position == declarerPosition || p.Position == partnerPosition
			if onDeclarerTeam == isDeclarerTeam {
				teamTricks += len(p.TricksWon) / 4
			}
		}
		return CheckVolat(teamTricks)
	case tarokk.AnnouncementPagatUltimo:
		return CheckPagatUltimo(trickHistory, a.PlayerPosition)
	case tarokk.AnnouncementXXICatch:
		return CheckXXICatch(trickHistory, a.PlayerPosition)
	}
	return false
}

// SilentAchievements は宣言されなかったが達成されたボーナスを検出します。
// サイレント判定の対象はトゥルとキング4枚のみです。その他の宣言は事前の
// 宣言があって初めて成立します。
func SilentAchievements(players []*tarokk.Player, announcements []*tarokk.Announcement) []*tarokk.Announcement {
	type key struct {
		position int
		t        tarokk.AnnouncementType
	}
	announced := map[key]bool{}
	for _, a := range announcements {
		announced[key{a.PlayerPosition, a.Type}] = true
	}

	var silent []*tarokk.Announcement
	for _, p := range players {
		if !announced[key{p.Position, tarokk.AnnouncementTrull}] && CheckTrull(p) {
			silent = append(silent, &tarokk.Announcement{
				PlayerPosition: p.Position,
				Type:           tarokk.AnnouncementTrull,
				Announced:      false,
			})
		}
		if !announced[key{p.Position, tarokk.AnnouncementFourKings}] && CheckFourKings(p) {
			silent = append(silent, &tarokk.Announcement{
				PlayerPosition: p.Position,
				Type:           tarokk.AnnouncementFourKings,
				Announced:      false,
			})
		}
	}
	return silent
}
