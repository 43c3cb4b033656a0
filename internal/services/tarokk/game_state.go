package tarokk

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// GamePhase はゲームの進行フェーズです。強制順序:
// Waiting → Dealing → Bidding → TalonDistribution → Discarding →
// PartnerCall → Announcements → Playing → Scoring → HandEnd。
// 全員passのオークションはDealingに巻き戻ります（ディーラーは次へ回ります）。
type GamePhase string

const (
	PhaseWaiting           GamePhase = "waiting"
	PhaseDealing           GamePhase = "dealing"
	PhaseBidding           GamePhase = "bidding"
	PhaseTalonDistribution GamePhase = "talon_distribution"
	PhaseDiscarding        GamePhase = "discarding"
	PhasePartnerCall       GamePhase = "partner_call"
	PhaseAnnouncements     GamePhase = "announcements"
	PhasePlaying           GamePhase = "playing"
	PhaseScoring           GamePhase = "scoring"
	PhaseHandEnd           GamePhase = "hand_end"
)

// TargetHandSize は捨て札後の手札枚数、TotalTricks は1ハンドのトリック数です。
const (
	TargetHandSize = 9
	TotalTricks    = 9
)

// GameState は1ハンドの中心的なゲーム状態です。
// すべてのコマンドはアトミックに適用されます。失敗時は状態が変更されません。
// すべてのフィールドはJSONスナップショットとして損失なく永続化できます。
type GameState struct {
	GameID string    `json:"game_id"`
	Phase  GamePhase `json:"phase"`

	Players []*tarokk.Player `json:"players"`
	Talon   []tarokk.Card    `json:"talon"`

	DealerPosition int `json:"dealer_position"`
	CurrentTurn    int `json:"current_turn"`

	// ビッド
	BidHistory       []tarokk.Bid `json:"bid_history"`
	DeclarerPosition *int         `json:"declarer_position"`
	WinningBid       *tarokk.Bid  `json:"winning_bid"`

	// パートナー
	CalledCardRank  string `json:"called_card_rank,omitempty"`
	PartnerPosition *int   `json:"partner_position"`
	PartnerRevealed bool   `json:"partner_revealed"`

	// トリックテイキング
	CurrentTrick        []tarokk.TrickPlay   `json:"current_trick"`
	TrickLeader         int                  `json:"trick_leader"`
	TrickNumber         int                  `json:"trick_number"`
	PreviousTrickWinner *int                 `json:"previous_trick_winner"`
	TrickHistory        []tarokk.TrickRecord `json:"trick_history"`

	// 捨て札フェーズ
	PlayersWhoDiscarded []int `json:"players_who_discarded"`

	// 宣言。AnnouncementLogはpass/コントラの手番消費をnilで記録し、
	// 3連続passによるフェーズ終了判定に使用します。
	Announcements   []*tarokk.Announcement `json:"announcements"`
	AnnouncementLog []*tarokk.Announcement `json:"announcement_log"`
}

// NewGameState は待機フェーズの新しいゲーム状態を生成します。
func NewGameState() *GameState {
	return &GameState{
		GameID: uuid.NewString(),
		Phase:  PhaseWaiting,
	}
}

// AddPlayer はプレイヤーをゲームに追加します。席順は追加順です。
func (g *GameState) AddPlayer(player *tarokk.Player) error {
	if len(g.Players) >= NumPlayers {
		return fmt.Errorf("game already has %d players", NumPlayers)
	}
	player.Position = len(g.Players)
	g.Players = append(g.Players, player)
	return nil
}

// GetPlayer は席番号からプレイヤーを返します。範囲外の場合はnilです。
func (g *GameState) GetPlayer(position int) *tarokk.Player {
	if position < 0 || position >= len(g.Players) {
		return nil
	}
	return g.Players[position]
}

// GetPlayerByID はIDからプレイヤーを返します。
func (g *GameState) GetPlayerByID(playerID string) *tarokk.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// AllPlayersReady は4人全員が揃ってレディかどうかを返します。
func (g *GameState) AllPlayersReady() bool {
	if len(g.Players) != NumPlayers {
		return false
	}
	for _, p := range g.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// DealerRight はディーラーの右隣（反時計回りで次）の席を返します。
func (g *GameState) DealerRight() int {
	return (g.DealerPosition + 1) % NumPlayers
}

// NextPosition は反時計回りで次の席を返します。
func (g *GameState) NextPosition(current int) int {
	return (current + 1) % NumPlayers
}

// StartDealing はディーリングフェーズを開始してカードを配ります。
// 配り順: タロンに6枚、その後ディーラーの右から反時計回りに
// 各プレイヤーへ5枚ずつ、さらに4枚ずつ配ります。
func (g *GameState) StartDealing() error {
	if len(g.Players) != NumPlayers {
		return fmt.Errorf("need %d players to deal, have %d", NumPlayers, len(g.Players))
	}

	g.Phase = PhaseDealing
	deck := tarokk.NewShuffledDeck()

	for _, p := range g.Players {
		p.ResetForNewHand()
	}
	g.Talon = nil
	g.BidHistory = nil
	g.DeclarerPosition = nil
	g.WinningBid = nil
	g.CalledCardRank = ""
	g.PartnerPosition = nil
	g.PartnerRevealed = false
	g.CurrentTrick = nil
	g.TrickNumber = 0
	g.PreviousTrickWinner = nil
	g.TrickHistory = nil
	g.PlayersWhoDiscarded = nil
	g.Announcements = nil
	g.AnnouncementLog = nil

	talon, err := deck.Deal(6)
	if err != nil {
		return err
	}
	g.Talon = talon

	start := g.DealerRight()
	for _, batch := range []int{5, 4} {
		for round := 0; round < batch; round++ {
			for i := 0; i < NumPlayers; i++ {
				pos := (start + i) % NumPlayers
				cards, err := deck.Deal(1)
				if err != nil {
					return err
				}
				g.Players[pos].AddCardsToHand(cards)
			}
		}
	}

	return nil
}

// StartBidding はビッドフェーズを開始します。ディーラーの右から始まります。
func (g *GameState) StartBidding() {
	g.Phase = PhaseBidding
	g.BidHistory = nil
	g.CurrentTurn = g.DealerRight()
}

// BidResult はPlaceBidの結果です。
type BidResult struct {
	Bid             tarokk.Bid
	AuctionComplete bool
	// Redealt は全員passで流局になり、新しいハンドが配り直されたことを示します。
	Redealt bool
}

// PlaceBid はビッドを行います。soloは即座にオークションを終了し、
// 全員passの場合はディーラーを次に回して配り直します。
//
// Parameters:
//   position : ビッドするプレイヤーの席
//   bidType  : ビッドの種類
// Returns:
//   *BidResult: 成立したビッドとオークションの進行状況
//   error     : RuleError（手番違い、フェーズ違い、ルール違反）
func (g *GameState) PlaceBid(position int, bidType tarokk.BidType) (*BidResult, error) {
	if g.Phase != PhaseBidding {
		return nil, wrongPhase(PhaseBidding, g.Phase)
	}
	if position != g.CurrentTurn {
		return nil, outOfTurn(position)
	}
	player := g.GetPlayer(position)
	if player == nil {
		return nil, notFound("player at position %d not found", position)
	}

	if ok, reason := CanPlaceBid(player, bidType, g.BidHistory); !ok {
		return nil, ruleViolation("%s", reason)
	}

	bid := tarokk.NewBid(position, bidType)

	// holdは最高ビッドの値を引き継ぎます。
	if bidType == tarokk.BidHold {
		if highest := HighestBid(g.BidHistory); highest != nil {
			bid.GameValue = highest.GameValue
			bid.TalonCards = highest.TalonCards
		}
	}

	g.BidHistory = append(g.BidHistory, bid)

	result := &BidResult{Bid: bid}

	if bidType == tarokk.BidSolo || IsAuctionComplete(g.BidHistory) {
		result.AuctionComplete = true
		g.WinningBid = HighestBid(g.BidHistory)
		if g.WinningBid != nil {
			pos := g.WinningBid.PlayerPosition
			g.DeclarerPosition = &pos
			g.Players[pos].IsDeclarer = true
			g.Phase = PhaseTalonDistribution
			g.CurrentTurn = pos
		} else {
			// 全員pass: 流局。ディーラーを回して配り直します。
			g.DealerPosition = g.NextPosition(g.DealerPosition)
			if err := g.StartDealing(); err != nil {
				return nil, err
			}
			g.StartBidding()
			result.Redealt = true
		}
	} else {
		g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	}

	return result, nil
}

// DistributeTalon は勝利ビッドに応じてタロンを分配します。
// 宣言者がビッドの枚数を取り、残りは他の3人にできるだけ均等に
// （端数は手番順の先頭から）分配されます。分配後タロンは空になり、
// 捨て札フェーズに移行します。
//
// Returns:
//   map[int][]tarokk.Card: 席ごとの受け取ったカード
//   error                : RuleError（フェーズ違い）
func (g *GameState) DistributeTalon() (map[int][]tarokk.Card, error) {
	if g.Phase != PhaseTalonDistribution {
		return nil, wrongPhase(PhaseTalonDistribution, g.Phase)
	}
	if g.WinningBid == nil || g.DeclarerPosition == nil {
		return nil, ruleViolation("no winning bid or declarer")
	}

	declarerPos := *g.DeclarerPosition
	distribution := make(map[int][]tarokk.Card)

	declarerCards := g.Talon[:g.WinningBid.TalonCards]
	distribution[declarerPos] = declarerCards
	g.Players[declarerPos].AddCardsToHand(declarerCards)

	remaining := g.Talon[g.WinningBid.TalonCards:]
	var others []int
	for i := 0; i < NumPlayers; i++ {
		if i != declarerPos {
			others = append(others, i)
		}
	}

	perPlayer := len(remaining) / len(others)
	extra := len(remaining) % len(others)
	idx := 0
	for i, pos := range others {
		n := perPlayer
		if i < extra {
			n++
		}
		cards := remaining[idx : idx+n]
		distribution[pos] = cards
		g.Players[pos].AddCardsToHand(cards)
		idx += n
	}

	g.Talon = nil

	g.Phase = PhaseDiscarding
	g.PlayersWhoDiscarded = nil
	g.CurrentTurn = g.DealerRight()

	return distribution, nil
}

// DiscardResult はDiscardCardsの結果です。
type DiscardResult struct {
	Discarded        []tarokk.Card
	TarokksDiscarded int
	// PhaseComplete は4人全員が捨て終わりパートナーコールに移ったことを示します。
	PhaseComplete bool
}

// DiscardCards は手札がちょうど9枚になるようにカードを捨てます。
// キングとオナーは捨てられません。枚数・保護の検証に失敗した場合、
// 手札は変更されません。
func (g *GameState) DiscardCards(position int, cardIDs []string) (*DiscardResult, error) {
	if g.Phase != PhaseDiscarding {
		return nil, wrongPhase(PhaseDiscarding, g.Phase)
	}
	if position != g.CurrentTurn {
		return nil, outOfTurn(position)
	}
	player := g.GetPlayer(position)
	if player == nil {
		return nil, notFound("player at position %d not found", position)
	}

	required := len(player.Hand) - TargetHandSize
	if len(cardIDs) != required {
		return nil, ruleViolation("must discard exactly %d cards", required)
	}

	var toDiscard []tarokk.Card
	for _, id := range cardIDs {
		c := player.FindCard(id)
		if c == nil {
			return nil, notFound("card %s not found in hand", id)
		}
		toDiscard = append(toDiscard, *c)
	}
	if ok, reason := ValidateDiscard(toDiscard); !ok {
		return nil, ruleViolation("%s", reason)
	}

	discarded, err := player.DiscardCards(cardIDs)
	if err != nil {
		return nil, ruleViolation("%s", err.Error())
	}

	g.PlayersWhoDiscarded = append(g.PlayersWhoDiscarded, position)

	result := &DiscardResult{
		Discarded:        discarded,
		TarokksDiscarded: CountTarokksInDiscard(discarded),
	}

	if len(g.PlayersWhoDiscarded) == NumPlayers {
		g.Phase = PhasePartnerCall
		g.CurrentTurn = *g.DeclarerPosition
		result.PhaseComplete = true
	} else {
		g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	}

	return result, nil
}

// CallPartner は宣言者がタロックのランクを指名してパートナーを決めます。
// 指名されたカードの所持者が秘密のパートナーになります（宣言者自身でも可）。
// パートナーの正体は指名カードがプレイされるまで公開されません。
func (g *GameState) CallPartner(position int, tarokkRank string) error {
	if g.Phase != PhasePartnerCall {
		return wrongPhase(PhasePartnerCall, g.Phase)
	}
	if g.DeclarerPosition == nil || position != *g.DeclarerPosition {
		return ruleViolation("only the declarer can call a partner")
	}

	probe := tarokk.Card{Suit: tarokk.SuitTarokk, Rank: tarokkRank}
	if probe.TarokkValue() == 0 {
		return ruleViolation("invalid tarokk rank: %s", tarokkRank)
	}

	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c.IsTarokk() && c.Rank == tarokkRank {
				pos := p.Position
				g.CalledCardRank = tarokkRank
				g.PartnerPosition = &pos
				p.IsPartner = true

				g.Phase = PhaseAnnouncements
				g.Announcements = nil
				g.AnnouncementLog = nil
				g.CurrentTurn = *g.DeclarerPosition
				return nil
			}
		}
	}

	return notFound("called card %s not found in any player's hand", tarokkRank)
}

// AnnouncementResult はMakeAnnouncementsの結果です。
type AnnouncementResult struct {
	Made          []*tarokk.Announcement
	PhaseComplete bool
}

// MakeAnnouncements は1手番で1つ以上の宣言を行います。
// すべての宣言を検証してから適用し、手番は1回だけ進みます。
// パガートウルティモはパガート、XXIキャッチはスキーズの所持が必要です。
func (g *GameState) MakeAnnouncements(position int, types []tarokk.AnnouncementType, announced bool) (*AnnouncementResult, error) {
	if g.Phase != PhaseAnnouncements {
		return nil, wrongPhase(PhaseAnnouncements, g.Phase)
	}
	if position != g.CurrentTurn {
		return nil, outOfTurn(position)
	}
	if len(types) == 0 {
		return nil, ruleViolation("must specify at least one announcement type")
	}
	player := g.GetPlayer(position)
	if player == nil {
		return nil, notFound("player at position %d not found", position)
	}

	seen := make(map[tarokk.AnnouncementType]bool, len(types))
	for _, t := range types {
		if seen[t] {
			return nil, ruleViolation("duplicate announcement type %s", t)
		}
		seen[t] = true
		if g.hasAnnounced(position, t) {
			return nil, ruleViolation("player %d has already announced %s", position, t)
		}
		if ok, reason := CanAnnounce(player.Hand, t); !ok {
			return nil, ruleViolation("%s: %s", t, reason)
		}
	}

	result := &AnnouncementResult{}
	for _, t := range types {
		a := &tarokk.Announcement{
			PlayerPosition: position,
			Type:           t,
			Announced:      announced,
		}
		g.Announcements = append(g.Announcements, a)
		g.AnnouncementLog = append(g.AnnouncementLog, a)
		result.Made = append(result.Made, a)
	}

	g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	result.PhaseComplete = g.finishAnnouncementsIfComplete()
	return result, nil
}

// PassAnnouncement は宣言をパスします。3連続パスでフェーズが終了し、
// トリックテイキングが始まります。
//
// Returns:
//   bool : フェーズが終了した場合true
//   error: RuleError
func (g *GameState) PassAnnouncement(position int) (bool, error) {
	if g.Phase != PhaseAnnouncements {
		return false, wrongPhase(PhaseAnnouncements, g.Phase)
	}
	if position != g.CurrentTurn {
		return false, outOfTurn(position)
	}

	g.AnnouncementLog = append(g.AnnouncementLog, nil)
	g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	return g.finishAnnouncementsIfComplete(), nil
}

// ContraAnnouncement は相手チームの宣言にコントラ（点数値×2）をかけます。
// 各宣言に対してコントラは1回のみです。コントラは手番を1回消費します。
func (g *GameState) ContraAnnouncement(position int, t tarokk.AnnouncementType) (bool, error) {
	if g.Phase != PhaseAnnouncements {
		return false, wrongPhase(PhaseAnnouncements, g.Phase)
	}
	if position != g.CurrentTurn {
		return false, outOfTurn(position)
	}

	a := g.findTeamAnnouncement(t, !g.onDeclarerTeam(position))
	if a == nil {
		return false, notFound("no opposing announcement of type %s found", t)
	}
	if a.Contra {
		return false, ruleViolation("announcement %s has already been contra'd", t)
	}

	a.Contra = true
	pos := position
	a.ContraBy = &pos

	g.AnnouncementLog = append(g.AnnouncementLog, nil)
	g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	return g.finishAnnouncementsIfComplete(), nil
}

// RecontraAnnouncement はコントラされた自チームの宣言にレコントラ
// （点数値×4）をかけ返します。コントラ済みの宣言に対して1回のみです。
func (g *GameState) RecontraAnnouncement(position int, t tarokk.AnnouncementType) (bool, error) {
	if g.Phase != PhaseAnnouncements {
		return false, wrongPhase(PhaseAnnouncements, g.Phase)
	}
	if position != g.CurrentTurn {
		return false, outOfTurn(position)
	}

	a := g.findTeamAnnouncement(t, g.onDeclarerTeam(position))
	if a == nil {
		return false, notFound("no announcement of type %s by your team found", t)
	}
	if !a.Contra {
		return false, ruleViolation("can only recontra a contra'd announcement")
	}
	if a.Recontra {
		return false, ruleViolation("announcement %s has already been recontra'd", t)
	}

	a.Recontra = true
	pos := position
	a.RecontraBy = &pos

	g.AnnouncementLog = append(g.AnnouncementLog, nil)
	g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	return g.finishAnnouncementsIfComplete(), nil
}

// findTeamAnnouncement は指定チームの宣言を探します。両チームが同じ種類を
// 宣言している場合でもコントラの対象が取り違えられないようにします。
func (g *GameState) findTeamAnnouncement(t tarokk.AnnouncementType, declarerTeam bool) *tarokk.Announcement {
	for _, a := range g.Announcements {
		if a.Type == t && g.onDeclarerTeam(a.PlayerPosition) == declarerTeam {
			return a
		}
	}
	return nil
}

func (g *GameState) hasAnnounced(position int, t tarokk.AnnouncementType) bool {
	for _, a := range g.Announcements {
		if a.PlayerPosition == position && a.Type == t {
			return true
		}
	}
	return false
}

func (g *GameState) onDeclarerTeam(position int) bool {
	if g.DeclarerPosition != nil && position == *g.DeclarerPosition {
		return true
	}
	return g.PartnerPosition != nil && position == *g.PartnerPosition
}

// finishAnnouncementsIfComplete は3連続パスを検出してプレイフェーズに
// 移行します。終了した場合trueを返します。
func (g *GameState) finishAnnouncementsIfComplete() bool {
	if len(g.AnnouncementLog) < 3 {
		return false
	}
	for _, entry := range g.AnnouncementLog[len(g.AnnouncementLog)-3:] {
		if entry != nil {
			return false
		}
	}
	g.startPlaying()
	return true
}

// startPlaying はトリックテイキングフェーズを開始します。
// 最初のトリックはディーラーの右がリードします。
func (g *GameState) startPlaying() {
	g.Phase = PhasePlaying
	g.TrickNumber = 1
	g.TrickLeader = g.DealerRight()
	g.CurrentTurn = g.TrickLeader
	g.CurrentTrick = nil
}

// PlayResult はPlayCardの結果です。
type PlayResult struct {
	Card tarokk.Card
	// PartnerRevealed はこのプレイで指名カードが出てパートナーが公開された
	// ことを示します。カードプレイと公開はアトミックです。
	PartnerRevealed bool
	TrickComplete   bool
	TrickWinner     *int
	TrickPoints     int
	TrickNumber     int
	// HandComplete は9トリック目が終わり精算フェーズに移ったことを示します。
	HandComplete bool
}

// PlayCard はカードを現在のトリックにプレイします。
// フォロースート／タロック義務に違反するプレイは拒否されます。
// 4枚目のプレイでトリックが解決され、勝者が次のリードになります。
func (g *GameState) PlayCard(position int, cardID string) (*PlayResult, error) {
	if g.Phase != PhasePlaying {
		return nil, wrongPhase(PhasePlaying, g.Phase)
	}
	if position != g.CurrentTurn {
		return nil, outOfTurn(position)
	}
	player := g.GetPlayer(position)
	if player == nil {
		return nil, notFound("player at position %d not found", position)
	}

	card := player.FindCard(cardID)
	if card == nil {
		return nil, notFound("card %s not found in hand", cardID)
	}

	isLeading := len(g.CurrentTrick) == 0
	var leadSuit tarokk.Suit
	if !isLeading {
		leadSuit = g.CurrentTrick[0].Card.Suit
	}
	if ok, reason := ValidatePlay(*card, player.Hand, leadSuit, isLeading); !ok {
		return nil, ruleViolation("%s", reason)
	}

	played, err := player.PlayCard(cardID)
	if err != nil {
		return nil, notFound("%s", err.Error())
	}

	result := &PlayResult{Card: played, TrickNumber: g.TrickNumber}

	// 指名カードのプレイとパートナー公開はアトミックに行われます。
	if played.IsTarokk() && played.Rank == g.CalledCardRank && !g.PartnerRevealed {
		g.PartnerRevealed = true
		if g.PartnerPosition != nil {
			g.Players[*g.PartnerPosition].PartnerRevealed = true
		}
		result.PartnerRevealed = true
	}

	g.CurrentTrick = append(g.CurrentTrick, tarokk.TrickPlay{PlayerPosition: position, Card: played})

	if len(g.CurrentTrick) == NumPlayers {
		winner := g.completeTrick()
		result.TrickComplete = true
		result.TrickWinner = &winner
		result.TrickPoints = tarokk.TotalPoints(g.TrickHistory[len(g.TrickHistory)-1].Cards())
		result.HandComplete = g.Phase == PhaseScoring
	} else {
		g.CurrentTurn = g.NextPosition(g.CurrentTurn)
	}

	return result, nil
}

// completeTrick は現在のトリックを解決し、勝者にカードを与えます。
// 9トリック目の完了で精算フェーズに移行します。
func (g *GameState) completeTrick() int {
	winning := tarokk.ResolveTrickWinner(g.CurrentTrick)
	winnerPos := winning.PlayerPosition

	record := tarokk.TrickRecord{
		Number:         g.TrickNumber,
		Plays:          g.CurrentTrick,
		WinnerPosition: winnerPos,
	}
	g.TrickHistory = append(g.TrickHistory, record)
	g.Players[winnerPos].AddToTricks(record.Cards())

	g.PreviousTrickWinner = &winnerPos
	g.CurrentTrick = nil
	g.TrickNumber++

	if g.TrickNumber <= TotalTricks {
		g.TrickLeader = winnerPos
		g.CurrentTurn = winnerPos
	} else {
		g.Phase = PhaseScoring
	}

	return winnerPos
}

// CalculateScores は両チームのカード点数を返します。
// パートナーの捨て札は相手チームに数えられます。
func (g *GameState) CalculateScores() (int, int, error) {
	if g.DeclarerPosition == nil || g.PartnerPosition == nil {
		return 0, 0, ruleViolation("no declarer or partner")
	}
	declarer, opponent := CalculateTeamScores(g.Players, *g.DeclarerPosition, *g.PartnerPosition)
	return declarer, opponent, nil
}

// Settle は精算を実行してハンドを終了します。
// 未公開のパートナーはこの時点で公開されます。
func (g *GameState) Settle() (*Settlement, error) {
	if g.Phase != PhaseScoring {
		return nil, wrongPhase(PhaseScoring, g.Phase)
	}
	if g.DeclarerPosition == nil || g.PartnerPosition == nil || g.WinningBid == nil {
		return nil, ruleViolation("cannot settle without declarer, partner, and winning bid")
	}

	if !g.PartnerRevealed {
		g.PartnerRevealed = true
		g.Players[*g.PartnerPosition].PartnerRevealed = true
	}

	settlement := CalculateFinalScore(
		g.Players,
		*g.DeclarerPosition,
		*g.PartnerPosition,
		*g.WinningBid,
		g.Announcements,
		g.TrickHistory,
	)

	g.Phase = PhaseHandEnd
	return settlement, nil
}

// GameStateView は観測者別のゲーム状態の投影です。
// 他プレイヤーの手札・タロンの中身・未公開のパートナーは含まれません。
type GameStateView struct {
	GameID           string              `json:"game_id"`
	Phase            GamePhase           `json:"phase"`
	Players          []tarokk.PlayerView `json:"players"`
	DealerPosition   int                 `json:"dealer_position"`
	CurrentTurn      int                 `json:"current_turn"`
	YourPosition     *int                `json:"your_position,omitempty"`
	BidHistory       []tarokk.Bid        `json:"bid_history"`
	DeclarerPosition *int                `json:"declarer_position"`
	CalledCardRank   string              `json:"called_card_rank,omitempty"`
	PartnerPosition  *int                `json:"partner_position"`
	PartnerRevealed  bool                `json:"partner_revealed"`
	TrickNumber      int                 `json:"trick_number"`
	CurrentTrick     []tarokk.TrickPlay  `json:"current_trick"`
	TalonCount       int                 `json:"talon_count"`
	Announcements    []*tarokk.Announcement `json:"announcements"`
}

// ObserverView は指定プレイヤー視点のゲーム状態を返します。
// 手札の秘匿はここでのみ行われるため、状態を外部に出す前に必ず
// この投影を通す必要があります。playerIDが空の場合は全手札を隠します。
func (g *GameState) ObserverView(playerID string) GameStateView {
	var yourPosition *int
	if playerID != "" {
		if p := g.GetPlayerByID(playerID); p != nil {
			pos := p.Position
			yourPosition = &pos
		}
	}

	players := make([]tarokk.PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		hideHand := yourPosition == nil || p.Position != *yourPosition
		players = append(players, p.View(hideHand))
	}

	var partnerPosition *int
	if g.PartnerRevealed {
		partnerPosition = g.PartnerPosition
	}

	return GameStateView{
		GameID:           g.GameID,
		Phase:            g.Phase,
		Players:          players,
		DealerPosition:   g.DealerPosition,
		CurrentTurn:      g.CurrentTurn,
		YourPosition:     yourPosition,
		BidHistory:       g.BidHistory,
		DeclarerPosition: g.DeclarerPosition,
		CalledCardRank:   g.CalledCardRank,
		PartnerPosition:  partnerPosition,
		PartnerRevealed:  g.PartnerRevealed,
		TrickNumber:      g.TrickNumber,
		CurrentTrick:     g.CurrentTrick,
		TalonCount:       len(g.Talon),
		Announcements:    g.Announcements,
	}
}

// Snapshot はゲーム状態を損失なくJSONにシリアライズします。
// 復元されたスナップショットは同一の合法手・精算結果を再現します。
func (g *GameState) Snapshot() ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state snapshot: %w", err)
	}
	return data, nil
}

// RestoreSnapshot はJSONスナップショットからゲーム状態を復元します。
func RestoreSnapshot(data []byte) (*GameState, error) {
	var g GameState
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state snapshot: %w", err)
	}
	return &g, nil
}
