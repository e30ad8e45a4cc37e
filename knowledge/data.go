package knowledge

func branch(name string, children ...Topic) Topic {
	return Topic{Name: name, Children: children}
}

func leaf(name, text string) Topic {
	return Topic{Name: name, Text: text}
}

var mountainData = []Topic{
	branch("techniques",
		branch("free_solo",
			leaf("description", "Climbing without ropes or protection"),
			leaf("mental_aspect", "Pure commitment. No room for doubt."),
			leaf("risks", "Death is the only consequence of failure"),
			leaf("masters", "Alex Honnold, Dan Osman, Derek Hersey"),
		),
		branch("alpine_climbing",
			leaf("description", "Fast, light climbing in mountain environments"),
			leaf("philosophy", "Speed is safety. Weight is weakness."),
			leaf("conditions", "Weather windows, objective hazards"),
			leaf("gear", "Minimal rack, light boots, alpine draws"),
		),
		branch("ice_climbing",
			leaf("description", "Ascending frozen waterfalls and ice formations"),
			leaf("tools", "Ice axes, crampons, ice screws"),
			leaf("technique", "Read the ice. Blue is strong, white is weak."),
			leaf("seasons", "Winter formations, spring dangers"),
		),
		branch("mixed_climbing",
			leaf("description", "Rock and ice combined"),
			leaf("challenge", "Switching between mediums mid-route"),
			leaf("gear", "Hybrid tools, flexible mindset"),
		),
	),

	branch("equipment",
		branch("ropes",
			leaf("dynamic", "Absorbs fall energy. 9.5-10.5mm for alpine"),
			leaf("static", "Rescue, hauling. No stretch."),
			leaf("care", "Inspect for cuts, core damage, UV wear"),
		),
		branch("protection",
			leaf("cams", "Spring-loaded camming devices. Placement is art."),
			leaf("nuts", "Passive protection. Simple, reliable."),
			leaf("pitons", "Hammered steel. Old school commitment."),
			leaf("ice_screws", "Threaded into ice. Placement angle critical."),
		),
		branch("clothing",
			leaf("layering", "Base, insulation, shell. Adapt to conditions."),
			leaf("materials", "Merino wool, synthetic insulation, Gore-Tex"),
			leaf("extremities", "Hands and feet fail first in cold"),
		),
	),

	branch("weather",
		branch("altitude_effects",
			leaf("pressure", "Decreases ~1% per 100m elevation"),
			leaf("temperature", "Drops ~2°C per 300m gain"),
			leaf("oxygen", "50% at 5500m, 33% at 8800m"),
		),
		branch("mountain_weather",
			leaf("orographic_lift", "Air rises, cools, creates clouds"),
			leaf("lenticular_clouds", "High winds aloft. Dangerous."),
			leaf("morning_conditions", "Often most stable window"),
			leaf("afternoon_storms", "Heat builds instability"),
		),
		branch("seasonal_patterns",
			leaf("spring", "Avalanche season. Unstable snow."),
			leaf("summer", "Rock fall from freeze-thaw cycles"),
			leaf("autumn", "Stable weather, shorter days"),
			leaf("winter", "Cold, wind, limited daylight"),
		),
	),

	branch("hazards",
		branch("objective",
			leaf("rockfall", "Gravity never sleeps. Move fast through zones."),
			leaf("avalanche", "Snow is a fluid. Understand its moods."),
			leaf("crevasses", "Glacier travel requires rope, awareness"),
			leaf("weather", "Mountains create their own storms"),
		),
		branch("subjective",
			leaf("fatigue", "Tired climbers make fatal mistakes"),
			leaf("dehydration", "Altitude accelerates fluid loss"),
			leaf("altitude_sickness", "Ascend slowly, descend quickly"),
			leaf("hypothermia", "Core temperature drops, judgment fails"),
		),
	),

	branch("famous_peaks",
		branch("everest",
			leaf("height", "8,848.86m"),
			leaf("challenges", "Death zone above 8000m, crowds, weather"),
			leaf("routes", "South Col (Nepal), North Ridge (Tibet)"),
			leaf("philosophy", "Not the hardest, but the highest price"),
		),
		branch("k2",
			leaf("height", "8,611m"),
			leaf("reputation", "Savage Mountain. Technical, dangerous"),
			leaf("weather", "Unpredictable, violent storms"),
			leaf("mortality", "1 death per 4 summits historically"),
		),
		branch("matterhorn",
			leaf("height", "4,478m"),
			leaf("character", "Iconic pyramid. Deceptively difficult"),
			leaf("routes", "Hörnli Ridge most popular"),
			leaf("hazards", "Rockfall, crowds, weather changes"),
		),
		branch("el_capitan",
			leaf("height", "914m vertical"),
			leaf("location", "Yosemite Valley, California"),
			leaf("routes", "The Nose, Freerider, Dawn Wall"),
			leaf("culture", "Big wall mecca. Multi-day ascents"),
		),
	),

	branch("japanese_mountains",
		branch("mount_fuji",
			leaf("height", "3,776m"),
			leaf("season", "July-September climbing season"),
			leaf("routes", "Yoshida, Subashiri, Gotemba, Fujinomiya"),
			leaf("character", "Sacred mountain. Pilgrimage and challenge"),
		),
		branch("mount_yari",
			leaf("height", "3,180m"),
			leaf("nickname", "Spear of the Gods"),
			leaf("routes", "North Ridge technical, South Ridge easier"),
			leaf("season", "June-October, ice climbing in winter"),
		),
		branch("mount_hotaka",
			leaf("height", "3,190m"),
			leaf("character", "Technical ridges, alpine environment"),
			leaf("access", "Kamikochi base, multiple peaks"),
			leaf("climbing", "Rock and mixed routes available"),
		),
	),
}
