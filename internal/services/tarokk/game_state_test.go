package tarokk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGameFlow_AuctionToPlaying はビッドからトリックテイキング開始までの
// フェーズ遷移をテストします。
func TestGameFlow_AuctionToPlaying(t *testing.T) {
	g := advanceToPlaying(t)

	require.NotNil(t, g.DeclarerPosition)
	assert.Equal(t, 1, *g.DeclarerPosition)
	require.NotNil(t, g.WinningBid)
	assert.Equal(t, tarokk.BidThree, g.WinningBid.Type)

	// パートナーは決定済みだが未公開
	require.NotNil(t, g.PartnerPosition)
	assert.Equal(t, 0, *g.PartnerPosition)
	assert.False(t, g.PartnerRevealed)
	assert.Equal(t, "XX", g.CalledCardRank)

	// 全員9枚、タロンは分配済み
	for _, p := range g.Players {
		assert.Len(t, p.Hand, TargetHandSize, "player %d hand size", p.Position)
	}
	assert.Empty(t, g.Talon)

	// 最初のトリックはディーラーの右（席1）がリード
	assert.Equal(t, 1, g.TrickLeader)
	assert.Equal(t, 1, g.CurrentTurn)
	assert.Equal(t, 1, g.TrickNumber)
}

// TestPlaceBid_Validation は手番・フェーズ違反が分類付きエラーで拒否される
// ことをテストします。
func TestPlaceBid_Validation(t *testing.T) {
	g := advanceToBidding(t)

	// ビッドはディーラーの右（席1）から。席2は手番ではない
	_, err := g.PlaceBid(2, tarokk.BidThree)
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrOutOfTurn, ruleErr.Code)

	// フェーズ外のコマンド
	_, err = g.DiscardCards(1, []string{"t-XII"})
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrWrongPhase, ruleErr.Code)

	// 失敗してもビッド履歴は変化しない
	assert.Empty(t, g.BidHistory)
}

// TestDistributeTalon_Split はタロン6枚の分配（宣言者がビッド枚数、残りは
// 他の3人へ均等）をテストします。
func TestDistributeTalon_Split(t *testing.T) {
	g := advanceToBidding(t)
	for _, step := range []struct {
		pos int
		bid tarokk.BidType
	}{
		{1, tarokk.BidThree}, {2, tarokk.BidPass}, {3, tarokk.BidPass}, {0, tarokk.BidPass},
	} {
		_, err := g.PlaceBid(step.pos, step.bid)
		require.NoError(t, err)
	}

	dist, err := g.DistributeTalon()
	require.NoError(t, err)

	// threeビッドの宣言者は3枚、残り3枚は他の3人に1枚ずつ
	assert.Len(t, dist[1], 3)
	assert.Len(t, dist[0], 1)
	assert.Len(t, dist[2], 1)
	assert.Len(t, dist[3], 1)

	assert.Len(t, g.Players[1].Hand, 12)
	assert.Len(t, g.Players[0].Hand, 10)
	assert.Empty(t, g.Talon)
	assert.Equal(t, PhaseDiscarding, g.Phase)
	assert.Equal(t, 1, g.CurrentTurn)
}

// TestDiscardCards_Rejections は枚数違反・保護カードの捨て札が拒否され、
// 手札が変更されないことをテストします。
func TestDiscardCards_Rejections(t *testing.T) {
	g := advanceToBidding(t)
	for _, step := range []struct {
		pos int
		bid tarokk.BidType
	}{
		{1, tarokk.BidThree}, {2, tarokk.BidPass}, {3, tarokk.BidPass}, {0, tarokk.BidPass},
	} {
		_, err := g.PlaceBid(step.pos, step.bid)
		require.NoError(t, err)
	}
	_, err := g.DistributeTalon()
	require.NoError(t, err)

	// 宣言者（席1）は12枚なので3枚捨てる必要がある
	_, err = g.DiscardCards(1, []string{"diamonds-C"})
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrRuleViolation, ruleErr.Code)

	// キング・オナーは保護されている
	_, err = g.DiscardCards(1, []string{"diamonds-K", "diamonds-C", "diamonds-J"})
	require.Error(t, err)
	_, err = g.DiscardCards(1, []string{"t-skiz", "diamonds-C", "diamonds-J"})
	require.Error(t, err)

	// 失敗後も手札は12枚のまま
	assert.Len(t, g.Players[1].Hand, 12)
	assert.Equal(t, 1, g.CurrentTurn)
}

// TestCallPartner_StaysSecret は指名カードの所持者がパートナーになり、
// プレイされるまで観測者ビューで公開されないことをテストします。
func TestCallPartner_StaysSecret(t *testing.T) {
	g := advanceToAnnouncements(t)
	for i, p := range g.Players {
		p.ID = fmt.Sprintf("user-%d", i)
	}

	require.NotNil(t, g.PartnerPosition)
	assert.Equal(t, 0, *g.PartnerPosition)
	assert.True(t, g.Players[0].IsPartner)
	assert.False(t, g.PartnerRevealed)

	// 指名ランクは公開されるがパートナーの席は隠される
	view := g.ObserverView("user-2")
	assert.Equal(t, "XX", view.CalledCardRank)
	assert.Nil(t, view.PartnerPosition)

	// 自分の手札のみ見える
	require.NotNil(t, view.YourPosition)
	assert.Equal(t, 2, *view.YourPosition)
	for _, pv := range view.Players {
		if pv.Position == 2 {
			assert.NotEmpty(t, pv.Hand)
		} else {
			assert.Empty(t, pv.Hand)
		}
	}
}

// TestMakeAnnouncements_RequiresCard はパガートなしのパガートウルティモ宣言が
// 拒否されることをテストします。
func TestMakeAnnouncements_RequiresCard(t *testing.T) {
	g := advanceToAnnouncements(t)

	// 宣言者（席1）はパガートを持っていない
	_, err := g.MakeAnnouncements(1, []tarokk.AnnouncementType{tarokk.AnnouncementPagatUltimo}, true)
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrRuleViolation, ruleErr.Code)
	assert.Empty(t, g.Announcements)
}

// TestContraRecontra はコントラ・レコントラのチーム制約と手番消費を
// テストします。
func TestContraRecontra(t *testing.T) {
	g := advanceToAnnouncements(t)

	// 宣言者（席1）がトゥルを宣言
	_, err := g.MakeAnnouncements(1, []tarokk.AnnouncementType{tarokk.AnnouncementTrull}, true)
	require.NoError(t, err)

	// 相手チームの席2がコントラ
	_, err = g.ContraAnnouncement(2, tarokk.AnnouncementTrull)
	require.NoError(t, err)

	// コントラ済みの宣言への再コントラは拒否
	_, err = g.ContraAnnouncement(3, tarokk.AnnouncementTrull)
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrRuleViolation, ruleErr.Code)

	done, err := g.PassAnnouncement(3)
	require.NoError(t, err)
	assert.False(t, done)

	// 秘密のパートナー（席0）が自チームの宣言にレコントラ。
	// コントラ・パス・レコントラで宣言なしの手番が3回続くためフェーズ終了。
	done, err = g.RecontraAnnouncement(0, tarokk.AnnouncementTrull)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, PhasePlaying, g.Phase)

	a := g.Announcements[0]
	assert.True(t, a.Contra)
	assert.True(t, a.Recontra)
	require.NotNil(t, a.ContraBy)
	assert.Equal(t, 2, *a.ContraBy)
	require.NotNil(t, a.RecontraBy)
	assert.Equal(t, 0, *a.RecontraBy)
	assert.Equal(t, 8, a.Points())
}

// TestMakeAnnouncements_RejectsDuplicates は同一プレイヤーによる同じ種類の
// 重複宣言が、1回の手番内でも別の手番でも拒否されることをテストします。
// 重複を許すと精算時に同じ宣言が二重に支払われてしまいます。
func TestMakeAnnouncements_RejectsDuplicates(t *testing.T) {
	g := advanceToAnnouncements(t)

	// 1回の手番内の重複
	_, err := g.MakeAnnouncements(1, []tarokk.AnnouncementType{tarokk.AnnouncementTrull, tarokk.AnnouncementTrull}, true)
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrRuleViolation, ruleErr.Code)
	assert.Empty(t, g.Announcements)
	assert.Equal(t, 1, g.CurrentTurn)

	// 有効な宣言を挟んで手番を一周させる
	_, err = g.MakeAnnouncements(1, []tarokk.AnnouncementType{tarokk.AnnouncementTrull}, true)
	require.NoError(t, err)
	_, err = g.PassAnnouncement(2)
	require.NoError(t, err)
	_, err = g.PassAnnouncement(3)
	require.NoError(t, err)
	_, err = g.MakeAnnouncements(0, []tarokk.AnnouncementType{tarokk.AnnouncementFourKings}, true)
	require.NoError(t, err)

	// 別の手番での再宣言も拒否され、状態は変化しない
	_, err = g.MakeAnnouncements(1, []tarokk.AnnouncementType{tarokk.AnnouncementTrull}, true)
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrRuleViolation, ruleErr.Code)
	assert.Len(t, g.Announcements, 2)
	assert.Equal(t, PhaseAnnouncements, g.Phase)
}

// TestContra_TargetsOpposingTeam は両チームが同じ種類を宣言している場合に、
// コントラが相手チーム側の宣言にかかることをテストします。
func TestContra_TargetsOpposingTeam(t *testing.T) {
	g := advanceToAnnouncements(t)

	// 宣言者（席1）と相手チームの席2がどちらもトゥルを宣言
	_, err := g.MakeAnnouncements(1, []tarokk.AnnouncementType{tarokk.AnnouncementTrull}, true)
	require.NoError(t, err)
	_, err = g.MakeAnnouncements(2, []tarokk.AnnouncementType{tarokk.AnnouncementTrull}, true)
	require.NoError(t, err)

	// 相手チームの席3のコントラは宣言者チーム（席1）のトゥルにかかる
	_, err = g.ContraAnnouncement(3, tarokk.AnnouncementTrull)
	require.NoError(t, err)
	assert.True(t, g.Announcements[0].Contra)
	require.NotNil(t, g.Announcements[0].ContraBy)
	assert.Equal(t, 3, *g.Announcements[0].ContraBy)
	assert.False(t, g.Announcements[1].Contra)

	// 秘密のパートナー（席0）のコントラは相手チーム（席2）のトゥルにかかる
	_, err = g.ContraAnnouncement(0, tarokk.AnnouncementTrull)
	require.NoError(t, err)
	assert.True(t, g.Announcements[1].Contra)
	require.NotNil(t, g.Announcements[1].ContraBy)
	assert.Equal(t, 0, *g.Announcements[1].ContraBy)
}

// TestPlayCard_IllegalPlayLeavesStateUnchanged はタロック義務違反のプレイが
// 拒否され、トリックと手札が変化しないことをテストします。
func TestPlayCard_IllegalPlayLeavesStateUnchanged(t *testing.T) {
	g := advanceToPlaying(t)

	_, err := g.PlayCard(1, "t-XII")
	require.NoError(t, err)

	// 席2はタロックを持っているためスートカードを出せない
	_, err = g.PlayCard(2, "spades-K")
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, ErrRuleViolation, ruleErr.Code)

	assert.Len(t, g.CurrentTrick, 1)
	assert.Len(t, g.Players[2].Hand, TargetHandSize)
	assert.Equal(t, 2, g.CurrentTurn)
}

// TestPlayCard_TrickResolutionAndPartnerReveal はトリック解決と指名カードの
// プレイによるアトミックなパートナー公開をテストします。
func TestPlayCard_TrickResolutionAndPartnerReveal(t *testing.T) {
	g := advanceToPlaying(t)

	// トリック1: 席1がdKをリード、他はディスカード義務でタロックを出す
	for _, step := range []struct {
		pos  int
		card string
	}{
		{1, "diamonds-K"}, {2, "t-VIII"}, {3, "t-II"},
	} {
		res, err := g.PlayCard(step.pos, step.card)
		require.NoError(t, err)
		assert.False(t, res.TrickComplete)
	}

	res, err := g.PlayCard(0, "t-XVII")
	require.NoError(t, err)
	assert.True(t, res.TrickComplete)
	require.NotNil(t, res.TrickWinner)
	assert.Equal(t, 0, *res.TrickWinner)
	assert.Equal(t, 8, res.TrickPoints)
	assert.False(t, res.PartnerRevealed)

	// 勝者がトリックのカードを獲得し、次のリードになる
	assert.Len(t, g.Players[0].TricksWon, 4)
	assert.Equal(t, 0, g.TrickLeader)
	assert.Equal(t, 2, g.TrickNumber)

	// トリック2: 席0が指名カードXXをリード → パートナー公開
	res, err = g.PlayCard(0, "t-XX")
	require.NoError(t, err)
	assert.True(t, res.PartnerRevealed)
	assert.True(t, g.PartnerRevealed)
	assert.True(t, g.Players[0].PartnerRevealed)
}

// TestAllPassRedeal は全員passの流局でディーラーが次に回り配り直される
// ことをテストします。
func TestAllPassRedeal(t *testing.T) {
	g := advanceToBidding(t)

	var last *BidResult
	for _, pos := range []int{1, 2, 3, 0} {
		var err error
		last, err = g.PlaceBid(pos, tarokk.BidPass)
		require.NoError(t, err)
	}

	assert.True(t, last.Redealt)
	assert.True(t, last.AuctionComplete)
	assert.Equal(t, 1, g.DealerPosition)
	assert.Equal(t, PhaseBidding, g.Phase)
	assert.Equal(t, 2, g.CurrentTurn)
	assert.Empty(t, g.BidHistory)
	assert.Len(t, g.Talon, 6)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, TargetHandSize)
	}
}

// TestSnapshotRoundtrip はスナップショットから復元した状態でゲームを
// 継続できることをテストします。
func TestSnapshotRoundtrip(t *testing.T) {
	g := advanceToPlaying(t)
	_, err := g.PlayCard(1, "t-XII")
	require.NoError(t, err)

	data, err := g.Snapshot()
	require.NoError(t, err)

	restored, err := RestoreSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, g.GameID, restored.GameID)
	assert.Equal(t, g.Phase, restored.Phase)
	assert.Equal(t, g.CurrentTurn, restored.CurrentTurn)
	assert.Equal(t, g.CalledCardRank, restored.CalledCardRank)
	require.NotNil(t, restored.DeclarerPosition)
	assert.Equal(t, *g.DeclarerPosition, *restored.DeclarerPosition)
	require.Len(t, restored.CurrentTrick, 1)
	for i, p := range g.Players {
		assert.Equal(t, len(p.Hand), len(restored.Players[i].Hand))
	}

	// 復元した状態で合法手が継続できる
	res, err := restored.PlayCard(2, "t-IX")
	require.NoError(t, err)
	assert.False(t, res.TrickComplete)
}

// TestFullHand_Settlement は9トリックすべてをプレイして精算までの完全な
// ハンドをテストします。パートナー（席0）の捨て札は相手チームに数えられ、
// 宣言者（席1）はオナー3枚を集めてサイレントトゥルを達成します。
func TestFullHand_Settlement(t *testing.T) {
	g := advanceToPlaying(t)

	type play struct {
		pos  int
		card string
	}
	tricks := []struct {
		plays  [4]play
		winner int
	}{
		{[4]play{{1, "diamonds-K"}, {2, "t-VIII"}, {3, "t-II"}, {0, "t-XVII"}}, 0},
		{[4]play{{0, "t-XX"}, {1, "t-XII"}, {2, "t-IX"}, {3, "t-III"}}, 0},
		{[4]play{{0, "hearts-K"}, {1, "t-XIII"}, {2, "t-X"}, {3, "t-IV"}}, 1},
		{[4]play{{1, "t-skiz"}, {2, "t-XI"}, {3, "t-V"}, {0, "t-XIX"}}, 1},
		{[4]play{{1, "t-XXI"}, {2, "t-I"}, {3, "t-VI"}, {0, "t-XVIII"}}, 1},
		{[4]play{{1, "diamonds-Q"}, {2, "spades-C"}, {3, "t-VII"}, {0, "hearts-10"}}, 3},
		{[4]play{{3, "clubs-K"}, {0, "hearts-C"}, {1, "t-XIV"}, {2, "clubs-J"}}, 1},
		{[4]play{{1, "t-XVI"}, {2, "spades-Q"}, {3, "clubs-Q"}, {0, "spades-10"}}, 1},
		{[4]play{{1, "t-XV"}, {2, "spades-K"}, {3, "clubs-10"}, {0, "hearts-Q"}}, 1},
	}

	var last *PlayResult
	for i, trick := range tricks {
		for _, p := range trick.plays {
			var err error
			last, err = g.PlayCard(p.pos, p.card)
			require.NoError(t, err, "trick %d: play %s by %d", i+1, p.card, p.pos)
		}
		require.True(t, last.TrickComplete, "trick %d", i+1)
		require.NotNil(t, last.TrickWinner)
		assert.Equal(t, trick.winner, *last.TrickWinner, "trick %d winner", i+1)
	}

	assert.True(t, last.HandComplete)
	assert.Equal(t, PhaseScoring, g.Phase)

	s, err := g.Settle()
	require.NoError(t, err)
	assert.Equal(t, PhaseHandEnd, g.Phase)

	// 宣言者チーム: 席1のトリック60点 + 席0のトリック12点 + 席1の捨て札6点。
	// 相手チーム: 席3のトリック9点 + 残りの捨て札7点（パートナーの捨て札を含む）
	assert.Equal(t, 78, s.DeclarerTeamPoints)
	assert.Equal(t, 16, s.OpponentTeamPoints)
	assert.Equal(t, 94, s.DeclarerTeamPoints+s.OpponentTeamPoints)
	assert.Equal(t, "declarer_team", s.Winner)
	assert.Equal(t, 1, s.FinalGameValue)
	assert.Equal(t, 1, s.GameMultiplier)

	// 席1はskiz・XXI・パガートをすべて獲得 → サイレントトゥル(1点)
	require.Len(t, s.Achieved, 1)
	assert.Equal(t, tarokk.AnnouncementTrull, s.Achieved[0].Type)
	assert.Equal(t, 1, s.Achieved[0].PlayerPosition)
	assert.False(t, s.Achieved[0].Announced)

	// 基本支払い ±2 に席1のサイレントトゥル（相手2人から1点ずつ）が乗ります
	want := [NumPlayers]int{52, 54, 47, 47}
	assert.Equal(t, want, s.PlayerScores)

	// 支払いはペアごとの授受なので持ち点合計は変わらない
	total := 0
	for _, score := range s.PlayerScores {
		total += score
	}
	assert.Equal(t, BaselineScore*NumPlayers, total)

	// 精算時点でパートナーは公開済み
	assert.True(t, g.PartnerRevealed)
}
