package entities

import "time"

// Seed content shown when neither the local cache nor the remote document
// yields a usable blob.
const (
	SeedClanName           = "Dòng Họ Lê"
	SeedAddress            = "Thôn Đông, xã Phú Lộc, huyện Nho Quan, tỉnh Ninh Bình"
	SeedBannerURL          = "https://images.unsplash.com/photo-1577908581023-95245842c8d2?auto=format&fit=crop&q=80&w=2000"
	SeedHistoryText        = "Lịch sử dòng họ Lê là một hành trình dài của sự hiếu học, đoàn kết và cống hiến..."
	SeedAncestralHouseText = "Từ đường là nơi thờ tự linh thiêng, lưu giữ hồn cốt tổ tiên qua bao thế hệ."
)

// SeedRegulations is the default tộc ước.
func SeedRegulations() []string {
	return []string{
		"Tôn thờ tổ tiên, hiếu thảo với cha mẹ.",
		"Đoàn kết, tương trợ giữa các thành viên.",
		"Khuyến học, khuyến tài cho thế hệ trẻ.",
		"Giữ gìn và tôn tạo di sản dòng họ.",
	}
}

// SeedFamilyTree returns a small sample tree rooted at the founding ancestor.
func SeedFamilyTree() *FamilyMember {
	return &FamilyMember{
		ID:             "root",
		Name:           "Lê Văn Tổ",
		Generation:     1,
		IsMale:         true,
		Title:          "Thủy tổ",
		LunarDeathDate: "12-02 âm lịch",
		RestingPlace:   "Nghĩa trang họ Lê, xứ Đồng Quan",
		Spouses: []Spouse{
			{ID: "root-s1", Name: "Nguyễn Thị Hiền", DeathDate: "05-08 âm lịch"},
		},
		Children: []*FamilyMember{
			{
				ID:            "m-2-1",
				Name:          "Lê Văn Phúc",
				Generation:    2,
				IsMale:        true,
				DeathDate:     "20-10 âm lịch",
				OtherParentID: "root-s1",
				Children: []*FamilyMember{
					{ID: "m-3-1", Name: "Lê Văn An", Generation: 3, IsMale: true, BirthDate: "1932"},
					{ID: "m-3-2", Name: "Lê Thị Bình", Generation: 3, IsMale: false, BirthDate: "1936"},
				},
			},
			{
				ID:            "m-2-2",
				Name:          "Lê Văn Lộc",
				Generation:    2,
				IsMale:        true,
				OtherParentID: "root-s1",
				SpouseName:    "Trần Thị Mai",
				Children: []*FamilyMember{
					{ID: "m-3-3", Name: "Lê Văn Thọ", Generation: 3, IsMale: true, BirthDate: "1940"},
				},
			},
		},
	}
}

// SeedNews returns the sample news list.
func SeedNews() []NewsItem {
	return []NewsItem{
		{
			ID:      "n1",
			Title:   "Lễ khánh thành nhà thờ họ",
			Date:    "2024-12-20",
			Summary: "Con cháu khắp nơi về dự lễ khánh thành từ đường sau tu bổ.",
			Content: "Sau hai năm tu bổ, từ đường dòng họ đã hoàn thành và làm lễ khánh thành trong không khí trang nghiêm.",
		},
		{
			ID:      "n2",
			Title:   "Trao học bổng khuyến học",
			Date:    "2024-09-05",
			Summary: "Quỹ khuyến học trao thưởng cho con cháu đạt thành tích cao.",
			Content: "Năm nay quỹ khuyến học của dòng họ đã trao mười hai suất học bổng cho các cháu học sinh, sinh viên.",
		},
	}
}

// SeedAppData assembles the full seed blob stamped with now.
func SeedAppData(now time.Time) *AppData {
	data := &AppData{
		FamilyTree: SeedFamilyTree(),
		News:       SeedNews(),
		Events: []EventItem{
			{ID: "e1", Title: "Họp Mặt Đầu Xuân", SolarDate: "2025-02-15", Type: EventTypeGathering},
		},
		BannerURL:          SeedBannerURL,
		Address:            SeedAddress,
		HistoryText:        SeedHistoryText,
		AncestralHouseText: SeedAncestralHouseText,
		Regulations:        SeedRegulations(),
		ClanName:           SeedClanName,
		Theme:              ThemeTet,
	}
	return data.Touch(now)
}
