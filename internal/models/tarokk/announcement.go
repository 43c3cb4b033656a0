package tarokk

// AnnouncementType はボーナス宣言（アナウンス）の種類を表します。
type AnnouncementType string

const (
	AnnouncementTrull       AnnouncementType = "trull"        // オナー3枚すべて
	AnnouncementFourKings   AnnouncementType = "four_kings"   // キング4枚すべて
	AnnouncementDoubleGame  AnnouncementType = "double_game"  // 71点以上を予告
	AnnouncementVolat       AnnouncementType = "volat"        // 全9トリックを予告
	AnnouncementPagatUltimo AnnouncementType = "pagat_ultimo" // パガートで最終トリックを取る
	AnnouncementXXICatch    AnnouncementType = "xxi_catch"    // スキーズで相手のXXIを捕まえる
)

// AllAnnouncementTypes は宣言可能な全種類です。
var AllAnnouncementTypes = []AnnouncementType{
	AnnouncementTrull,
	AnnouncementFourKings,
	AnnouncementDoubleGame,
	AnnouncementVolat,
	AnnouncementPagatUltimo,
	AnnouncementXXICatch,
}

// Announcement はプレイヤーが行った1つの宣言を表します。
// Announcedがfalseの場合はサイレント（宣言なしで達成した場合の事後評価）です。
// コントラ・レコントラは点数値のみを倍にし、ゲーム倍率には影響しません。
type Announcement struct {
	PlayerPosition int              `json:"player_position"`
	Type           AnnouncementType `json:"announcement_type"`
	Announced      bool             `json:"announced"`
	Contra         bool             `json:"contra"`
	Recontra       bool             `json:"recontra"`
	ContraBy       *int             `json:"contra_by,omitempty"`
	RecontraBy     *int             `json:"recontra_by,omitempty"`
}

// NewAnnouncement は宣言済み（Announced=true）のアナウンスを生成します。
func NewAnnouncement(position int, t AnnouncementType) *Announcement {
	return &Announcement{PlayerPosition: position, Type: t, Announced: true}
}

// BasePoints はコントラ適用前の点数値を返します。宣言済みはサイレントの2倍です。
// DoubleGameとVolatは点数ではなくゲーム倍率で作用するため0を返します。
func (a *Announcement) BasePoints() int {
	switch a.Type {
	case AnnouncementTrull, AnnouncementFourKings:
		if a.Announced {
			return 2
		}
		return 1
	case AnnouncementPagatUltimo:
		if a.Announced {
			return 10
		}
		return 5
	case AnnouncementXXICatch:
		if a.Announced {
			return 42
		}
		return 21
	}
	return 0
}

// Points はコントラ（×2）・レコントラ（×4）を適用した点数値を返します。
func (a *Announcement) Points() int {
	points := a.BasePoints()
	if a.Recontra {
		return points * 4
	}
	if a.Contra {
		return points * 2
	}
	return points
}

// Multiplier はゲーム値への倍率を返します。
// 宣言されたDoubleGameは×2、宣言されたVolatは×3、それ以外は×1です。
func (a *Announcement) Multiplier() int {
	switch a.Type {
	case AnnouncementDoubleGame:
		if a.Announced {
			return 2
		}
	case AnnouncementVolat:
		if a.Announced {
			return 3
		}
	}
	return 1
}
