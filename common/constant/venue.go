package constant

import "venue-booking/model"

// MockVenues is served when the CMS is unreachable or has no published venues.
var MockVenues = []model.Venue{
	{
		Id:           1,
		DocumentId:   "grand-plaza-events-center",
		Name:         "Grand Plaza Events Center",
		Slug:         "grand-plaza-events-center",
		Description:  "A modern, versatile event space perfect for corporate events, weddings, and social gatherings. Located in the heart of the city with stunning views.",
		Location:     "123 Business District, Downtown",
		Capacity:     500,
		PricePerHour: 299,
		SetupOptions: []string{
			"Theater (500 guests)",
			"Classroom (300 guests)",
			"Banquet (400 guests)",
			"Reception (450 guests)",
		},
		Amenities: []string{
			"High-speed WiFi",
			"Professional Sound System",
			"Full Kitchen",
			"Free Parking",
			"Stage Area",
		},
		Rules: []string{
			"No smoking indoors",
			"Music must end by 11:00 PM",
		},
	},
	{
		Id:           2,
		DocumentId:   "grand-conference-hall",
		Name:         "Grand Conference Hall",
		Slug:         "grand-conference-hall",
		Description:  "Tiered conference hall with built-in projection and simultaneous translation booths.",
		Location:     "123 Business District, Downtown",
		Capacity:     300,
		PricePerHour: 249,
		SetupOptions: []string{
			"Theater (300 guests)",
			"Classroom (180 guests)",
		},
		Amenities: []string{
			"High-speed WiFi",
			"Projector and Screens",
			"Translation Booths",
		},
	},
	{
		Id:           3,
		DocumentId:   "executive-meeting-room-b",
		Name:         "Executive Meeting Room B",
		Slug:         "executive-meeting-room-b",
		Description:  "Private boardroom for up to twenty guests with video conferencing.",
		Location:     "123 Business District, Downtown",
		Capacity:     20,
		PricePerHour: 89,
		SetupOptions: []string{
			"Boardroom (20 guests)",
		},
		Amenities: []string{
			"High-speed WiFi",
			"Video Conferencing",
			"Coffee Service",
		},
	},
}

// DemoEvents backs the calendar placeholder.
var DemoEvents = []model.CalendarEvent{
	{
		Id:           1,
		Title:        "Web3 Innovators Meetup: Riyadh Chapter",
		Date:         "November 12, 2024",
		Time:         "7:00 PM - 9:30 PM",
		Venue:        "Grand Conference Hall",
		Host:         "KSA Blockchain Collective",
		Description:  "Connect with developers, founders, and enthusiasts exploring the future of decentralized tech in the Kingdom.",
		ManagerName:  "Events Desk",
		ManagerEmail: "events@venue-booking.local",
	},
	{
		Id:           2,
		Title:        "Saudi Tech Investment Forum: Seed Stage Showcase",
		Date:         "November 28, 2024",
		Time:         "9:00 AM - 5:00 PM",
		Venue:        "Exhibition Space",
		Host:         "Vision Ventures KSA",
		Description:  "Discover promising early-stage Saudi tech startups seeking investment and partnerships. Keynotes and networking sessions.",
		ManagerName:  "Events Desk",
		ManagerEmail: "events@venue-booking.local",
	},
	{
		Id:          3,
		Title:       "AI in PropTech: Transforming Real Estate",
		Date:        "December 5, 2024",
		Time:        "2:00 PM - 4:00 PM",
		Venue:       "Executive Meeting Room B",
		Host:        "Neonexus Insights",
		Description: "Panel discussion on how Artificial Intelligence is reshaping property management, valuation, and development.",
	},
}
