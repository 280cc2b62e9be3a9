package prayertimes

// Region groups the cities offered for one Uzbek province.
type Region struct {
	Name   string
	Cities []string
}

var regions = []Region{
	{"Toshkent", []string{
		"Toshkent", "Chirchiq", "Bekobod", "Olmaliq", "Yangiyo‘l", "Parkent", "Angren", "Nurafshon",
		"Ohangaron", "Qibray", "Oqqo‘rg‘on", "Piskent", "Bo‘stonliq", "Zangiota", "Yuqori Chirchiq",
	}},
	{"Samarqand", []string{
		"Samarqand", "Kattaqo‘rg‘on", "Urgut", "Ishtixon", "Narpay", "Past Darg‘om", "Payariq", "Qo‘shrabot",
		"Bulung‘ur", "Jomboy", "Oqdaryo", "Toyloq", "Koshrabod", "Poytug‘", "Qorako‘l",
	}},
	{"Buxoro", []string{
		"Buxoro", "G‘ijduvon", "Kogon", "Vobkent", "Qorako‘l", "Romitan", "Shofirkon",
		"Olot", "Jondor", "Qorovulbozor", "Peshku", "Kogon tuman",
	}},
	{"Farg‘ona", []string{
		"Farg‘ona", "Qo‘qon", "Marg‘ilon", "Rishton", "Quva", "Oltiariq", "Buvayda",
		"Dang‘ara", "Furqat", "Yozyovon", "O‘zbekiston", "Toshloq", "Uchko‘prik",
	}},
	{"Andijon", []string{
		"Andijon", "Asaka", "Xonobod", "Baliqchi", "Shahrixon", "Xo‘jaobod", "Marhamat",
		"Andijon tuman", "Buloqboshi", "Izboskan", "Jalolquduq", "Paxtaobod", "Ulug‘nor",
	}},
	{"Namangan", []string{
		"Namangan", "Chust", "Pop", "To‘raqo‘rg‘on", "Uychi", "Mingbuloq",
		"Namangan tuman", "Norin", "Uchqurg‘on", "Yangiqo‘rg‘on", "Kosonsoy",
	}},
	{"Navoiy", []string{
		"Navoiy", "Zarafshon", "Karmana", "Konimex", "Qiziltepa",
		"Navoiy tuman", "Nurota", "Uchquduq", "Tomdi", "Xatirchi",
	}},
	{"Qashqadaryo", []string{
		"Qarshi", "Shahrisabz", "Kitob", "Kasbi", "Yakkabog‘", "Muborak", "G‘uzor",
		"Chiroqchi", "Dehqonobod", "Koson", "Nishon", "Qamashi",
	}},
	{"Surxondaryo", []string{
		"Termiz", "Denov", "Sherobod", "Boysun", "Qumqo‘rg‘on", "Sariosiyo",
		"Angor", "Bandixon", "Muzrabot", "Oltinsoy", "Sherobod tuman", "Termiz tuman",
	}},
	{"Jizzax", []string{
		"Jizzax", "Zomin", "G‘allaorol", "Paxtakor", "Forish",
		"Arnasoy", "Baxmal", "Do‘stlik", "Sharof Rashidov", "Yangiobod",
	}},
	{"Sirdaryo", []string{
		"Guliston", "Shirin", "Yangiyer", "Boyovut", "Sayxunobod",
		"Oqqo‘rg‘on", "Sirdaryo tuman", "Xovos", "Mirzaobod",
	}},
	{"Xorazm", []string{
		"Urganch", "Xiva", "Hazorasp", "Qo‘shko‘pir", "Yangibozor",
		"Amudaryo", "Bog‘ot", "Gurlan", "Shovot", "Tuproqqal‘a", "Xonqa",
	}},
}

// Regions returns the catalogue in display order. Callers must not modify it.
func Regions() []Region {
	return regions
}

// RegionAt returns the region with index i.
func RegionAt(i int) (Region, bool) {
	if i < 0 || i >= len(regions) {
		return Region{}, false
	}
	return regions[i], true
}

// CityAt resolves a region/city index pair.
func CityAt(regionIdx, cityIdx int) (Region, string, bool) {
	r, ok := RegionAt(regionIdx)
	if !ok || cityIdx < 0 || cityIdx >= len(r.Cities) {
		return Region{}, "", false
	}
	return r, r.Cities[cityIdx], true
}
