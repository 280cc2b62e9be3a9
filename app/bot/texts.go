package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/qazobot/qazobot/app/admin"
	"github.com/qazobot/qazobot/app/prayertimes"
	"github.com/qazobot/qazobot/app/storage"
	"github.com/qazobot/qazobot/core/telegram/format"
)

const (
	textWelcome      = "🤝 Assalomu aleykum! Botimizga xush kelibsiz. Quyidagi menyudan foydalaning:"
	textWelcomeBack  = "😊 Siz bilan yana ko'rishganimdan xursandman! Botdan foydalanish uchun menyudan foydalaning:"
	textAdminWelcome = "👤 Siz adminsiz. Botdan to'liq foydalanishingiz mumkin."
	textSubscribe    = "📢 Botdan foydalanish uchun quyidagi kanallarga obuna bo'ling:"
	textSubsAdmin    = "✅ Siz adminsiz. Obuna talab qilinmaydi."
	textSubsNone     = "✅ Hozirda obuna talab qilinmaydi. Botdan foydalanishingiz mumkin."
	textSubsOK       = "✅ Obuna tekshirildi. Endi botdan foydalanishingiz mumkin."
	textSubsMissing  = "🚫 Hali ham barcha kanallarga obuna emassiz."
	textMenu         = "📢 Botdan foydalanish uchun menyudan foydalaning:"
	textBackToMenu   = "Asosiy menyuga qaytdingiz!"
	textCancelled    = "Bekor qilindi."
	textError        = "❌ Xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	textStale        = "⚠️ Bu tugma eskirgan. Menyudan qayta tanlang."
	textNotAdmin     = "❌ Siz admin emassiz."
	textNoRights     = "❌ Sizda admin huquqlari yo‘q."
	textMainOnly     = "❌ Bu funksiya faqat asosiy admin uchun mavjud."
	textRateLimited  = "⏳ Juda tez. Biroz kuting."

	textCounterPanel = "<b>Sizdagi mavjud qazolar:</b>\n\n" +
		"– Qazo oson o‘qish usuli\n" +
		"– 1 oyda 15 yillik qazo o‘qish"
	textReminder = "<b>Bugungi qazo namozlaringiz:</b>\n\n" +
		"Quyidagi tugmalar orqali o'qigan yoki o'qimagan namozlaringizni belgilang."
	textAdded      = "➕ Qo‘shildi"
	textRemoved    = "➖ Ayirildi"
	textAtZero     = "⚠️ 0 dan pastga tushmaydi"
	textRangeIntro = "📌 <b>Avvalo bir nechta muhim qismlarni bilishingiz kerak:</b>\n" +
		"1. Namozning farz bo‘lishi\n" +
		"2. Balog‘at yoshi\n" +
		"3. Quyidagi videoni tomosha qiling 👇\n\n" +
		"🎥 <a href='https://www.youtube.com/watch?v=46ClRRH3Sfo'>Shayxning tushuntiruvchi videosi</a>\n\n" +
		"❓ <b>Qazo vaqtingiz 1 yildan oshganmi?</b>"
	textAskYears   = "❓ Necha yil qazo namoz bor deb o‘ylaysiz? (masalan: 3)"
	textAskMonths  = "❓ Necha oy qazo namozingiz bor deb o‘ylaysiz? (masalan: 6)"
	textAskDays    = "❓ Necha kun qazo namozingiz bor deb o‘ylaysiz? (masalan: 25)"
	textBadAmount  = "❗ Iltimos, faqat musbat butun son kiriting."
	textYearsDone  = "✅ Yillik qazo hisoblandi."
	textMonthsDone = "✅ Oylik qazo hisoblandi."
	textDaysDone   = "✅ Kunlik qazo hisoblandi."
	textPickUnit   = "⚠️ Avval qazo hisoblash turini tanlang."

	textRegions    = "🗺 Qaysi viloyatdansiz?"
	textTimesError = "❌ Namoz vaqtlarini olishda xatolik."

	textFAQList    = "<b>❓ Tez-tez so‘raladigan savollar:</b>\n\nQuyidagi savollardan birini tanlang:"
	textFAQEmpty   = "❌ Hozircha savollar mavjud emas."
	textFAQMissing = "❌ Bu savol topilmadi."

	textAdminPanel     = "👑 Admin paneliga xush kelibsiz!"
	textAskBroadcast   = "Yubormoqchi bo‘lgan xabaringizni kiriting:"
	textAskChannelAdd  = "Kanal usernameni kiriting: @ChannelName"
	textAskChannelRm   = "O‘chirmoqchi bo‘lgan kanal usernameni kiriting: @ChannelName"
	textAskAdminAdd    = "Yangi admin qo‘shish uchun foydalanuvchi ID’sini kiriting (masalan: 123456789):"
	textAskAdminRemove = "O‘chirmoqchi bo‘lgan adminning ID’sini kiriting (masalan: 123456789):"
	textAskFAQQuestion = "✍️ Iltimos, savol matnini kiriting:"
	textAskFAQAnswer   = "📝 Endi shu savolga javobni yozing:"
	textFAQSaved       = "✅ FAQ muvaffaqiyatli saqlandi!"
	textBotNotAdmin    = "⚠️ Bot bu kanalga admin sifatida qo‘shilmagan. Avval kanalga admin qiling."
	textNoChannels     = "❌ Hozircha ulangan kanallar mavjud emas."
	textBadUserID      = "❌ Iltimos, faqat raqamli ID kiriting (masalan: 123456789)."
	textAlreadyAdmin   = "⚠️ Bu foydalanuvchi allaqachon admin."
	textUserNotFound   = "❌ Bu ID bilan foydalanuvchi topilmadi. Avval botda ro‘yxatdan o‘tganligiga ishonch hosil qiling."
	textTargetNotAdmin = "⚠️ Bu foydalanuvchi admin emas."
	textCannotRemove   = "❌ Bu ID bilan admin topilmadi yoki asosiy adminni o‘chirib bo‘lmaydi."
	textYouAreAdmin    = "🎉 Siz endi botning adminisiz!"
	textYouAreNotAdmin = "ℹ️ Sizning admin huquqlaringiz olib tashlandi."
	textEmptyInput     = "❗ Bo‘sh matn yuborib bo‘lmaydi. Qayta kiriting."
)

func textStats(s storage.Stats) string {
	return fmt.Sprintf("📊 Bot statistikasi:\n\n"+
		"👤 Kunlik: %d\n"+
		"📅 Haftalik: %d\n"+
		"🗓 Oylik: %d\n"+
		"👥 Umumiy: %d", s.Daily, s.Weekly, s.Monthly, s.Total)
}

func textBroadcastDone(sent int) string {
	return fmt.Sprintf("✅ Xabar %d foydalanuvchiga yuborildi.", sent)
}

func textChannelAdded(channel string) string {
	return fmt.Sprintf("✅ Kanal %s saqlandi va tekshiruvdan o‘tdi.", format.EscapeHTML(channel))
}

func textChannelUnreachable(channel string) string {
	return fmt.Sprintf("❌ Bot %s kanaliga kira olmayapti. Username to‘g‘riligini tekshiring.", format.EscapeHTML(channel))
}

func textChannelRemoved(channel string, existed bool) string {
	if !existed {
		return fmt.Sprintf("⚠️ %s ro‘yxatda topilmadi.", format.EscapeHTML(channel))
	}
	return fmt.Sprintf("🗑 %s o‘chirildi.", format.EscapeHTML(channel))
}

func textChannels(channels []string) string {
	var b strings.Builder
	b.WriteString("<b>📋 Ulangan kanallar ro‘yxati:</b>\n\n")
	for _, ch := range channels {
		b.WriteString("• " + format.EscapeHTML(ch) + "\n")
	}
	return b.String()
}

func textAdmins(entries []admin.AdminEntry) string {
	var b strings.Builder
	b.WriteString("<b>👥 Adminlar ro‘yxati:</b>\n\n")
	for _, e := range entries {
		role := "Admin"
		if e.Main {
			role = "Asosiy admin"
		}
		name := "(ma'lumot olinmadi)"
		if e.LookupErr == nil {
			name = e.Profile.FullName
			if name == "" {
				name = "Noma'lum"
			}
			if e.Profile.Username != "" {
				name += " (@" + e.Profile.Username + ")"
			}
		}
		fmt.Fprintf(&b, "• ID: %d | Ism: %s | Rol: %s\n", e.ID, format.EscapeHTML(name), role)
	}
	return b.String()
}

func textAdminGranted(id int64) string {
	return fmt.Sprintf("✅ Foydalanuvchi (ID: %d) admin qilib tayinlandi.", id)
}

func textAdminGrantedSilent(id int64) string {
	return fmt.Sprintf("✅ Foydalanuvchi (ID: %d) admin qilib tayinlandi, lekin xabar yuborib bo‘lmadi.", id)
}

func textAdminRevoked(id int64) string {
	return fmt.Sprintf("✅ Foydalanuvchi (ID: %d) adminlikdan olib tashlandi.", id)
}

func textAdminRevokedSilent(id int64) string {
	return fmt.Sprintf("✅ Foydalanuvchi (ID: %d) adminlikdan olib tashlandi, lekin xabar yuborib bo‘lmadi.", id)
}

func textCities(region string) string {
	return fmt.Sprintf("🏙 %sdagi qaysi shahar/tumandasiz?", region)
}

func textTimings(city string, day time.Time, t prayertimes.Timings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕌 %s\n\n", format.Bold(fmt.Sprintf("%s shahri uchun %s namoz vaqtlari:", city, day.Format(time.DateOnly))))
	rows := []struct{ name, at string }{
		{"Bomdod", t.Fajr},
		{"Quyosh", t.Sunrise},
		{"Peshin", t.Dhuhr},
		{"Asr", t.Asr},
		{"Shom", t.Maghrib},
		{"Xufton", t.Isha},
	}
	for _, r := range rows {
		if r.at == "" {
			continue
		}
		fmt.Fprintf(&b, "• %s: %s\n", r.name, format.EscapeHTML(r.at))
	}
	return b.String()
}

func textFAQAnswer(f storage.FAQ) string {
	text := format.EscapeHTML(f.Answer)
	if video := format.DerefString(f.VideoURL, ""); video != "" {
		text += "\n\n📹 Video: " + format.Link(video, video)
	}
	return text
}
