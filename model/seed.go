package model

// DefaultThemeColor is the accent used by the seed document.
const DefaultThemeColor = "#2563eb"

// Swatch is a named preset theme color.
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Palette lists the preset theme colors offered by the editor.
var Palette = []Swatch{
	{Name: "Blue", Hex: "#2563eb"},
	{Name: "Red", Hex: "#dc2626"},
	{Name: "Green", Hex: "#16a34a"},
	{Name: "Purple", Hex: "#9333ea"},
	{Name: "Orange", Hex: "#ea580c"},
	{Name: "Teal", Hex: "#0d9488"},
	{Name: "Indigo", Hex: "#4f46e5"},
	{Name: "Pink", Hex: "#db2777"},
	{Name: "Cyan", Hex: "#0891b2"},
	{Name: "Slate", Hex: "#475569"},
}

// Default returns the snapshot every editing session starts from. Each call
// returns fresh slices.
func Default() Document {
	return Document{
		ThemeColor: DefaultThemeColor,

		ShowContext:      true,
		ShowSolution:     true,
		ShowMetrics:      true,
		ShowCases:        true,
		ShowReviews:      true,
		ShowProcess:      true,
		ShowTariffs:      true,
		ShowGallery:      false,
		ShowFooter:       true,
		ShowCompanyStats: true,

		CompanyName:    "Digital Agency",
		CompanyPhone:   "+7 (999) 123-45-67",
		CompanyEmail:   "hello@digital.agency",
		CompanyWebsite: "www.digital.agency",

		OfferTitle:    "Коммерческое Предложение",
		OfferSubtitle: "Стратегия роста вашего бизнеса в 2024 году",
		MainImage:     "https://picsum.photos/800/400",

		CurrentSituation: "Вы сталкиваетесь с высокой конкуренцией и снижением конверсии в продажах.",
		ClientRequest:    "Необходимо увеличить объем продаж на 30% и автоматизировать процессы.",

		SolutionTitle:       "Комплексный маркетинг и автоматизация",
		SolutionDescription: "Мы внедрим CRM-систему и запустим таргетированную рекламу для привлечения целевых лидов.",

		Metrics: []Metric{
			{Indicator: "Количество лидов", Current: "100 заявок/мес", Future: "300 заявок/мес", Cause: "Новые каналы трафика"},
			{Indicator: "Конверсия в продажу", Current: "15%", Future: "25%", Cause: "Внедрение скриптов"},
		},

		CasesTitle: "Наши успешные кейсы",
		Cases: []CaseStudy{
			{Title: "Компания А", Description: "Увеличили выручку в 2 раза за 3 месяца."},
			{Title: "Стартап Б", Description: "Привлекли 10,000 пользователей на старте."},
			{Title: "Завод В", Description: "Оптимизировали расходы на логистику на 20%."},
		},

		Reviews: []Review{
			{Author: "Иван Иванов", Role: "CEO TechCorp", Text: "Отличная работа, результаты превзошли ожидания."},
		},

		ProcessTitle: "Как мы будем достигать результата",
		ProcessSteps: []Step{
			{Title: "Анализ", Description: "Аудит текущих процессов."},
			{Title: "Стратегия", Description: "Разработка плана действий."},
			{Title: "Внедрение", Description: "Техническая реализация."},
		},

		Tariffs: []Tariff{
			{Title: "Базовый", ServiceName: "Консультация", Price: "50 000 ₽", Features: []string{"Аудит", "Отчет"}},
			{Title: "Стандарт", ServiceName: "Внедрение", Price: "150 000 ₽", Features: []string{"Аудит", "Настройка", "Обучение"}},
			{Title: "PRO", ServiceName: "Сопровождение", Price: "300 000 ₽", Features: []string{"Все включено", "Поддержка 24/7", "Личный менеджер"}},
		},

		GalleryTitle:  "Фотоотчет",
		GalleryImages: []ImageRef{},

		Bonuses:     "Бесплатная настройка аналитики при оплате за 3 месяца.",
		CTAText:     "Готовы начать? Свяжитесь с нами сегодня!",
		ContactInfo: "+7 (999) 000-00-00",

		CompanyFooterImage: "https://picsum.photos/600/600",
		CompanyDescription: "Мы — команда экспертов с 10-летним опытом в сфере цифровизации бизнеса. Мы помогаем компаниям масштабироваться, внедряя передовые IT-решения и маркетинговые стратегии.",
		CompanyStats: []CompanyStat{
			{Value: "10+", Label: "Лет на рынке"},
			{Value: "500+", Label: "Успешных проектов"},
			{Value: "50", Label: "Экспертов в штате"},
			{Value: "24/7", Label: "Поддержка клиентов"},
		},
	}
}
