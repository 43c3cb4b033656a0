package tarokk

import (
	"testing"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// TestCheckTrull はオナー3枚すべての獲得判定をテストします。
func TestCheckTrull(t *testing.T) {
	p := tarokk.NewPlayer("", "test", 0)
	p.TricksWon = []tarokk.Card{tc(tarokk.RankSkiz), tc(tarokk.RankXXI), tc(tarokk.RankPagat), tc("XX")}
	if !CheckTrull(p) {
		t.Error("Expected trull with all three honours")
	}

	p.TricksWon = []tarokk.Card{tc(tarokk.RankSkiz), tc(tarokk.RankXXI), tc("XX")}
	if CheckTrull(p) {
		t.Error("Expected no trull with only two honours")
	}
}

// TestCheckFourKings はキング4枚すべての獲得判定をテストします。
func TestCheckFourKings(t *testing.T) {
	p := tarokk.NewPlayer("", "test", 0)
	p.TricksWon = []tarokk.Card{
		sc(tarokk.SuitHearts, tarokk.RankKing), sc(tarokk.SuitDiamonds, tarokk.RankKing),
		sc(tarokk.SuitSpades, tarokk.RankKing), sc(tarokk.SuitClubs, tarokk.RankKing),
		tc("V"),
	}
	if !CheckFourKings(p) {
		t.Error("Expected four kings")
	}

	p.TricksWon = p.TricksWon[1:]
	if CheckFourKings(p) {
		t.Error("Expected no four kings with only three")
	}
}

// TestCheckPagatUltimo は最終トリックをパガートで取る判定をテストします。
func TestCheckPagatUltimo(t *testing.T) {
	lastTrick := func(winner int, card tarokk.Card) []tarokk.TrickRecord {
		history := make([]tarokk.TrickRecord, 9)
		history[8] = tarokk.TrickRecord{
			Number: 9,
			Plays: []tarokk.TrickPlay{
				{PlayerPosition: 1, Card: card},
				{PlayerPosition: 2, Card: tc("V")},
			},
			WinnerPosition: winner,
		}
		return history
	}

	if !CheckPagatUltimo(lastTrick(1, tc(tarokk.RankPagat)), 1) {
		t.Error("Expected pagat ultimo when announcer wins the last trick with the pagat")
	}
	if CheckPagatUltimo(lastTrick(1, tc("X")), 1) {
		t.Error("Expected no pagat ultimo without the pagat being played")
	}
	if CheckPagatUltimo(lastTrick(2, tc(tarokk.RankPagat)), 1) {
		t.Error("Expected no pagat ultimo when another player wins the trick")
	}
	// ハンドが9トリックに達していない場合は不成立
	if CheckPagatUltimo(lastTrick(1, tc(tarokk.RankPagat))[:8], 1) {
		t.Error("Expected no pagat ultimo with fewer than 9 tricks")
	}
}

// TestCheckXXICatch はスキーズによるXXI捕獲の判定をテストします。
func TestCheckXXICatch(t *testing.T) {
	trick := func(winner int, plays ...tarokk.TrickPlay) []tarokk.TrickRecord {
		return []tarokk.TrickRecord{{Number: 1, Plays: plays, WinnerPosition: winner}}
	}

	caught := trick(0,
		tarokk.TrickPlay{PlayerPosition: 3, Card: tc(tarokk.RankXXI)},
		tarokk.TrickPlay{PlayerPosition: 0, Card: tc(tarokk.RankSkiz)},
	)
	if !CheckXXICatch(caught, 0) {
		t.Error("Expected XXI catch when skiz takes a trick containing an opponent's XXI")
	}

	noXXI := trick(0,
		tarokk.TrickPlay{PlayerPosition: 3, Card: tc("XX")},
		tarokk.TrickPlay{PlayerPosition: 0, Card: tc(tarokk.RankSkiz)},
	)
	if CheckXXICatch(noXXI, 0) {
		t.Error("Expected no XXI catch without the XXI in the trick")
	}

	// 自分がトリックを取っていなければ不成立
	if CheckXXICatch(caught, 3) {
		t.Error("Expected no XXI catch for the player who lost the XXI")
	}
}

// TestSilentAchievements は宣言なしで達成されたボーナスの検出をテストします。
func TestSilentAchievements(t *testing.T) {
	players := []*tarokk.Player{
		tarokk.NewPlayer("", "a", 0),
		tarokk.NewPlayer("", "b", 1),
		tarokk.NewPlayer("", "c", 2),
		tarokk.NewPlayer("", "d", 3),
	}
	players[1].TricksWon = []tarokk.Card{tc(tarokk.RankSkiz), tc(tarokk.RankXXI), tc(tarokk.RankPagat)}

	silent := SilentAchievements(players, nil)
	if len(silent) != 1 {
		t.Fatalf("Expected 1 silent achievement, got %d", len(silent))
	}
	if silent[0].Type != tarokk.AnnouncementTrull || silent[0].PlayerPosition != 1 || silent[0].Announced {
		t.Errorf("Unexpected silent achievement: %+v", silent[0])
	}

	// 宣言済みの場合はサイレント扱いにならない
	announced := []*tarokk.Announcement{
		{PlayerPosition: 1, Type: tarokk.AnnouncementTrull, Announced: true},
	}
	if got := SilentAchievements(players, announced); len(got) != 0 {
		t.Errorf("Expected no silent achievements when announced, got %d", len(got))
	}
}
