// Package site serves the public pages of the salon: the catalog, the
// reviews wall and the contacts form.
package site

// Service is a catalog entry on the services and home pages.
type Service struct {
	Slug        string
	Title       string
	Description string
	Details     []string
}

// Master is a member of the salon staff.
type Master struct {
	Name        string
	Specialty   string
	Experience  string
	Description string
	Skills      []string
}

// PriceItem is one line of the price list. To is zero for a fixed price.
type PriceItem struct {
	Name     string
	From     int
	To       int
	Duration string
}

// PriceCategory groups price lines.
type PriceCategory struct {
	Name  string
	Items []PriceItem
}

// Feature is a selling point on the home page.
type Feature struct {
	Title       string
	Description string
}

// GalleryItem is one work sample.
type GalleryItem struct {
	Title string
	Tone  string
}

// GalleryCategory is a gallery tab.
type GalleryCategory struct {
	ID    string
	Name  string
	Items []GalleryItem
}

// ContactInfo is how to reach the salon.
type ContactInfo struct {
	Address string
	Phone   string
	Email   string
	Hours   string
}

var services = []Service{
	{Slug: "haircuts", Title: "Стрижки", Description: "Женские, мужские и детские стрижки от профессиональных мастеров",
		Details: []string{"Модельные стрижки", "Стрижка горячими ножницами", "Укладка"}},
	{Slug: "coloring", Title: "Окрашивание", Description: "Все виды окрашивания: тонирование, мелирование, омбре",
		Details: []string{"Балаяж и шатуш", "Окрашивание корней", "Тонирование"}},
	{Slug: "manicure", Title: "Маникюр", Description: "Классический и аппаратный маникюр с покрытием",
		Details: []string{"Покрытие гель-лаком", "Дизайн ногтей", "Педикюр"}},
	{Slug: "cosmetology", Title: "Косметология", Description: "Уходовые процедуры для лица и тела",
		Details: []string{"Чистка лица", "Пилинги", "Anti-age программы"}},
	{Slug: "brows", Title: "Брови и ресницы", Description: "Оформление бровей, ламинирование ресниц",
		Details: []string{"Архитектура бровей", "Ламинирование", "Наращивание ресниц"}},
	{Slug: "massage", Title: "Массаж", Description: "Расслабляющий и оздоровительный массаж",
		Details: []string{"Классический массаж", "Лимфодренаж", "Массаж спины"}},
}

var features = []Feature{
	{Title: "Опытные мастера", Description: "Профессионалы с многолетним опытом и постоянным повышением квалификации"},
	{Title: "Качественные материалы", Description: "Используем только премиум-косметику и профессиональное оборудование"},
	{Title: "Индивидуальный подход", Description: "Учитываем особенности каждого клиента и его пожелания"},
	{Title: "Безопасность", Description: "Стерильные инструменты и соблюдение всех санитарных норм"},
}

var masters = []Master{
	{Name: "Анна Петрова", Specialty: "Стилист-колорист", Experience: "8 лет опыта",
		Description: "Специализируется на сложных техниках окрашивания: балаяж, шатуш, air touch. Постоянно совершенствует навыки на международных курсах.",
		Skills:      []string{"Окрашивание", "Стрижки", "Укладки"}},
	{Name: "Мария Иванова", Specialty: "Мастер маникюра", Experience: "5 лет опыта",
		Description: "Профессионал в области ногтевого сервиса. Владеет всеми видами маникюра и художественной росписи. Работает только с премиум-материалами.",
		Skills:      []string{"Маникюр", "Педикюр", "Дизайн ногтей"}},
	{Name: "Елена Сидорова", Specialty: "Косметолог", Experience: "10 лет опыта",
		Description: "Сертифицированный косметолог с медицинским образованием. Специализируется на anti-age программах и аппаратной косметологии.",
		Skills:      []string{"Чистки", "Пилинги", "Массаж лица"}},
	{Name: "Ольга Морозова", Specialty: "Массажист", Experience: "7 лет опыта",
		Description: "Опытный специалист по различным видам массажа. Индивидуальный подход к каждому клиенту с учетом особенностей организма.",
		Skills:      []string{"Классический массаж", "Лимфодренаж", "Антицеллюлитный"}},
	{Name: "Дарья Новикова", Specialty: "Бровист", Experience: "4 года опыта",
		Description: "Мастер по оформлению бровей и ресниц. Создает идеальную форму бровей с учетом особенностей лица. Сертифицированный специалист по ламинированию.",
		Skills:      []string{"Архитектура бровей", "Ламинирование", "Окрашивание"}},
	{Name: "Виктория Соколова", Specialty: "Стилист", Experience: "6 лет опыта",
		Description: "Креативный стилист, следящий за последними трендами в индустрии красоты. Специализируется на стрижках любой сложности.",
		Skills:      []string{"Женские стрижки", "Мужские стрижки", "Укладки"}},
}

var priceList = []PriceCategory{
	{Name: "Стрижки", Items: []PriceItem{
		{Name: "Женская стрижка", From: 1500, To: 2500, Duration: "60 мин"},
		{Name: "Мужская стрижка", From: 800, To: 1200, Duration: "40 мин"},
		{Name: "Детская стрижка", From: 600, To: 900, Duration: "30 мин"},
		{Name: "Укладка", From: 1000, To: 1500, Duration: "40 мин"},
	}},
	{Name: "Окрашивание", Items: []PriceItem{
		{Name: "Окрашивание корней", From: 2000, To: 3000, Duration: "90 мин"},
		{Name: "Полное окрашивание", From: 3500, To: 5500, Duration: "120 мин"},
		{Name: "Мелирование", From: 4000, To: 6000, Duration: "150 мин"},
		{Name: "Балаяж/Шатуш", From: 5000, To: 8000, Duration: "180 мин"},
		{Name: "Тонирование", From: 2500, To: 3500, Duration: "60 мин"},
	}},
	{Name: "Маникюр", Items: []PriceItem{
		{Name: "Классический маникюр", From: 1200, Duration: "45 мин"},
		{Name: "Аппаратный маникюр", From: 1000, Duration: "40 мин"},
		{Name: "Маникюр с покрытием", From: 1800, Duration: "60 мин"},
		{Name: "Наращивание ногтей", From: 2500, Duration: "120 мин"},
		{Name: "Педикюр", From: 2000, Duration: "60 мин"},
	}},
	{Name: "Косметология", Items: []PriceItem{
		{Name: "Чистка лица", From: 2500, To: 3500, Duration: "60 мин"},
		{Name: "Пилинг", From: 2000, To: 4000, Duration: "45 мин"},
		{Name: "Массаж лица", From: 1800, Duration: "40 мин"},
		{Name: "Anti-age программа", From: 5000, To: 7000, Duration: "90 мин"},
	}},
	{Name: "Брови и ресницы", Items: []PriceItem{
		{Name: "Архитектура бровей", From: 1200, Duration: "40 мин"},
		{Name: "Окрашивание бровей", From: 600, Duration: "20 мин"},
		{Name: "Ламинирование ресниц", From: 2500, Duration: "60 мин"},
		{Name: "Наращивание ресниц", From: 3000, To: 4000, Duration: "120 мин"},
	}},
	{Name: "Массаж", Items: []PriceItem{
		{Name: "Классический массаж", From: 2500, Duration: "60 мин"},
		{Name: "Лимфодренажный массаж", From: 3000, Duration: "60 мин"},
		{Name: "Антицеллюлитный массаж", From: 3500, Duration: "60 мин"},
		{Name: "Массаж спины", From: 1800, Duration: "40 мин"},
	}},
}

var gallery = []GalleryCategory{
	{ID: "hair", Name: "Волосы", Items: []GalleryItem{
		{Title: "Балаяж на темные волосы", Tone: "amber"},
		{Title: "Стрижка боб", Tone: "rose"},
		{Title: "Окрашивание омбре", Tone: "purple"},
		{Title: "Мужская стрижка", Tone: "gray"},
		{Title: "Свадебная укладка", Tone: "pink"},
		{Title: "Мелирование", Tone: "yellow"},
	}},
	{ID: "nails", Name: "Маникюр", Items: []GalleryItem{
		{Title: "Французский маникюр", Tone: "pink"},
		{Title: "Дизайн с блестками", Tone: "purple"},
		{Title: "Минималистичный дизайн", Tone: "gray"},
		{Title: "Яркий летний маникюр", Tone: "orange"},
		{Title: "Геометрический дизайн", Tone: "blue"},
		{Title: "Нюдовый маникюр", Tone: "rose"},
	}},
	{ID: "brows", Name: "Брови", Items: []GalleryItem{
		{Title: "Архитектура бровей", Tone: "amber"},
		{Title: "Окрашивание хной", Tone: "orange"},
		{Title: "Ламинирование бровей", Tone: "yellow"},
		{Title: "Натуральная форма", Tone: "amber"},
	}},
}

var bookingServices = []string{
	"Женская стрижка",
	"Мужская стрижка",
	"Окрашивание",
	"Мелирование",
	"Маникюр",
	"Педикюр",
	"Косметология",
	"Массаж",
	"Брови и ресницы",
}

var timeSlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00", "14:00",
	"15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
}

var contacts = ContactInfo{
	Address: "г. Москва, ул. Примерная, 123",
	Phone:   "+7 (999) 123-45-67",
	Email:   "info@sakura-salon.ru",
	Hours:   "Пн-Вс: 9:00 - 21:00",
}

// Services lists the service catalog.
func Services() []Service { return services }

// Features lists the home page selling points.
func Features() []Feature { return features }

// Masters lists the staff.
func Masters() []Master { return masters }

// MasterNames lists the names offered on the booking form.
func MasterNames() []string {
	names := make([]string, len(masters))
	for i, m := range masters {
		names[i] = m.Name
	}
	return names
}

// PriceList lists the price categories.
func PriceList() []PriceCategory { return priceList }

// Gallery lists the gallery tabs.
func Gallery() []GalleryCategory { return gallery }

// GalleryCategoryByID returns the tab with id, falling back to the first.
func GalleryCategoryByID(id string) GalleryCategory {
	for _, c := range gallery {
		if c.ID == id {
			return c
		}
	}
	return gallery[0]
}

// BookingServices lists the services a visitor may book.
func BookingServices() []string { return bookingServices }

// TimeSlots lists the bookable hours.
func TimeSlots() []string { return timeSlots }

// Contacts returns the salon contacts.
func Contacts() ContactInfo { return contacts }
