package assessment

// QuestionBank is the static, level-keyed pool used when AI question generation is
// unavailable. Pools keep bank order; selection preserves it.
type QuestionBank map[MaturityLevel][]Question

// fallbackPoolLevel is used when a level has no pool of its own.
const fallbackPoolLevel = Intermediate

// Pool returns the questions for level, or the intermediate pool when level has none.
func (b QuestionBank) Pool(level MaturityLevel) ([]Question, MaturityLevel) {
	if pool, ok := b[level]; ok && len(pool) > 0 {
		return pool, level
	}
	return b[fallbackPoolLevel], fallbackPoolLevel
}

func multiple(id string, c Category, weight float64, focus, prompt string, options ...string) Question {
	return Question{ID: id, Category: c, Prompt: prompt, Options: options, Type: QuestionMultiple, Weight: weight, Focus: focus}
}

func rating(id string, c Category, weight float64, focus, prompt string) Question {
	return Question{ID: id, Category: c, Prompt: prompt, Type: QuestionRating, Weight: weight, Focus: focus}
}

// DefaultBank returns a fresh copy of the built-in question bank. Developing has no pool
// and resolves to intermediate.
func DefaultBank() QuestionBank {
	return QuestionBank{
		Novice: {
			multiple("collab_basic_1", Collaboration, 1.0, "team_communication",
				"How often do team members communicate about their work?",
				"Rarely", "Weekly meetings only", "Daily check-ins", "Frequent informal communication", "Continuous collaboration"),
			multiple("auto_basic_1", Automation, 1.0, "build_automation",
				"What level of build automation does your team have?",
				"Manual builds", "Some build scripts", "Automated builds", "Automated builds with testing", "Full CI/CD pipeline"),
			multiple("monitor_basic_1", Monitoring, 1.0, "basic_monitoring",
				"How do you find out that production is broken?",
				"Customers tell us", "Someone notices", "Basic uptime checks", "Alerting on key metrics", "Alerts before users notice"),
			multiple("culture_basic_1", Culture, 1.0, "blameless_culture",
				"What happens after a production incident?",
				"Someone gets blamed", "Nothing formal", "Informal discussion", "Written postmortem", "Blameless review with follow-ups"),
			multiple("delivery_basic_1", Delivery, 1.0, "release_cadence",
				"How often does your team release to production?",
				"Every few months", "Monthly", "Every two weeks", "Weekly", "Daily or on demand"),
			multiple("collab_basic_2", Collaboration, 0.9, "code_review",
				"How are code changes reviewed before merging?",
				"No reviews", "Occasional reviews", "Reviews for big changes", "Every change reviewed", "Reviews with shared standards"),
			multiple("auto_basic_2", Automation, 0.9, "test_automation",
				"How much of your testing is automated?",
				"None", "A few unit tests", "Unit tests on main paths", "Unit and integration tests", "Automated tests gate every change"),
			multiple("monitor_basic_2", Monitoring, 0.9, "log_management",
				"Where do application logs go?",
				"Nowhere", "Local files on servers", "Copied by hand when needed", "Central log store", "Searchable logs linked to alerts"),
			multiple("culture_basic_2", Culture, 0.9, "continuous_learning",
				"How does the team pick up new skills?",
				"It doesn't", "On personal time", "Occasional training", "Regular learning sessions", "Learning is part of the workweek"),
			multiple("delivery_basic_2", Delivery, 0.9, "deployment_process",
				"How is a release deployed?",
				"Manual copy to servers", "Documented manual steps", "Scripted deployment", "One-click deployment", "Fully automated pipeline"),
		},
		Intermediate: {
			multiple("culture_int_1", Culture, 0.9, "continuous_improvement",
				"How does your team approach continuous improvement?",
				"No formal process", "Occasional retrospectives", "Regular retrospectives", "Continuous improvement mindset", "Innovation-driven culture"),
			rating("monitor_int_1", Monitoring, 0.8, "observability_practices",
				"Rate your team's observability practices (1-10)"),
			multiple("collab_int_1", Collaboration, 1.0, "dev_ops_partnership",
				"How effectively do development and operations teams work together?",
				"Separate silos", "Basic handoffs", "Some collaboration", "Strong partnership", "Fully integrated teams"),
			multiple("auto_int_1", Automation, 1.0, "infrastructure_as_code",
				"How is infrastructure provisioned?",
				"Manually", "Scripts run by hand", "Partly in code", "Mostly infrastructure as code", "Everything in reviewed code"),
			multiple("delivery_int_1", Delivery, 1.0, "lead_time",
				"How long does a committed change take to reach production?",
				"More than a month", "One to four weeks", "Several days", "About a day", "Less than an hour"),
			multiple("collab_int_2", Collaboration, 0.9, "knowledge_sharing",
				"How is operational knowledge shared across the team?",
				"In people's heads", "Scattered documents", "Maintained wiki", "Runbooks and regular sessions", "Shared ownership with rotation"),
			multiple("auto_int_2", Automation, 0.9, "pipeline_quality_gates",
				"What does your pipeline check before deploying?",
				"Nothing", "It builds", "Unit tests", "Tests and static analysis", "Tests, security and policy checks"),
			multiple("monitor_int_2", Monitoring, 0.9, "incident_response",
				"How is incident response organized?",
				"Whoever is around", "Informal escalation", "On-call rotation", "On-call with runbooks", "Practiced incident command"),
			multiple("culture_int_2", Culture, 0.9, "psychological_safety",
				"How comfortable are people raising problems or mistakes?",
				"Not at all", "Only privately", "Sometimes", "Usually", "Always, and it is encouraged"),
			multiple("delivery_int_2", Delivery, 0.9, "change_failure_rate",
				"How often does a deployment cause a failure in production?",
				"Most of the time", "Often", "Sometimes", "Rarely", "Almost never"),
		},
		Advanced: {
			multiple("adv_culture_1", Culture, 1.0, "culture_maturity",
				"How does your organization approach post-incident reviews?",
				"No reviews", "Blame assignment", "Basic analysis", "Blameless postmortems", "Learning-focused retrospectives"),
			multiple("adv_auto_1", Automation, 1.0, "infrastructure_automation",
				"How sophisticated is your Infrastructure as Code implementation?",
				"No IaC", "Basic scripts", "Templated infrastructure", "Immutable infrastructure", "Self-healing systems"),
			multiple("adv_monitor_1", Monitoring, 1.0, "observability_maturity",
				"How comprehensive is your observability strategy?",
				"Basic logs", "Metrics + logs", "Distributed tracing", "Full observability", "Predictive monitoring"),
			multiple("adv_collab_1", Collaboration, 1.0, "team_autonomy",
				"How does your team handle cross-functional decision making?",
				"Siloed decisions", "Manager approval", "Team consensus", "Delegated authority", "Autonomous teams"),
			multiple("adv_delivery_1", Delivery, 0.9, "deployment_sophistication",
				"What's your approach to feature flags and progressive deployment?",
				"No feature flags", "Basic toggles", "Targeted rollouts", "Canary deployments", "Advanced experimentation"),
			multiple("adv_culture_2", Culture, 1.0, "learning_culture",
				"How does your organization approach learning from failures?",
				"Avoid discussion", "Assign blame", "Document lessons", "Systematic learning", "Failure celebration"),
			multiple("adv_auto_2", Automation, 1.0, "testing_maturity",
				"How mature is your test automation strategy?",
				"Manual testing", "Unit tests", "Integration tests", "E2E automation", "AI-powered testing"),
			multiple("adv_monitor_2", Monitoring, 1.0, "reliability_engineering",
				"How proactive is your incident prevention approach?",
				"Reactive only", "Basic alerting", "Predictive alerts", "Chaos engineering", "Self-healing systems"),
			multiple("adv_collab_2", Collaboration, 1.0, "knowledge_management",
				"How does your team approach knowledge sharing?",
				"Ad-hoc sharing", "Documentation", "Regular sessions", "Pair programming", "Communities of practice"),
			multiple("adv_delivery_2", Delivery, 1.0, "deployment_automation",
				"How sophisticated is your deployment pipeline?",
				"Manual deployment", "Basic CI/CD", "Multi-stage pipeline", "Zero-downtime deployment", "Autonomous deployment"),
			multiple("adv_culture_3", Culture, 1.0, "psychological_safety",
				"How does your organization approach psychological safety?",
				"Not considered", "Aware but limited", "Actively building", "Strong foundation", "Exemplary culture"),
			multiple("adv_auto_3", Automation, 1.0, "security_automation",
				"How comprehensive is your security automation?",
				"Manual security", "Basic scanning", "Pipeline integration", "Continuous compliance", "Zero-trust automation"),
			multiple("adv_monitor_3", Monitoring, 1.0, "performance_culture",
				"How effective is your performance optimization process?",
				"No optimization", "Ad-hoc tuning", "Regular reviews", "Continuous optimization", "AI-driven optimization"),
			multiple("adv_collab_3", Collaboration, 1.0, "incident_coordination",
				"How mature is your incident response coordination?",
				"Chaotic response", "Basic procedures", "Defined roles", "Well-orchestrated", "Self-organizing response"),
			multiple("adv_delivery_3", Delivery, 1.0, "data_driven_development",
				"How data-driven is your product development approach?",
				"Assumption-based", "Basic analytics", "A/B testing", "Advanced experimentation", "ML-powered insights"),
		},
		Expert: {
			multiple("exp_delivery_1", Delivery, 1.0, "value_stream",
				"How do you measure flow through your value stream?",
				"We don't", "Ad-hoc spreadsheets", "DORA metrics tracked", "Flow metrics drive planning", "Continuous value stream optimization"),
			multiple("exp_auto_1", Automation, 1.0, "platform_engineering",
				"How do product teams get infrastructure and tooling?",
				"Tickets to ops", "Shared scripts", "Templates", "Self-service platform", "Platform as a product with SLAs"),
			multiple("exp_monitor_1", Monitoring, 1.0, "slo_practice",
				"How are reliability targets managed?",
				"No targets", "Uptime goals", "SLOs on key services", "Error budgets gate releases", "SLOs drive product decisions"),
			multiple("exp_culture_1", Culture, 1.0, "experimentation",
				"How are new ideas tested in your organization?",
				"Top-down decisions", "Occasional pilots", "Regular experiments", "Hypothesis-driven roadmap", "Experimentation at every level"),
			multiple("exp_collab_1", Collaboration, 1.0, "cross_org_alignment",
				"How do teams coordinate across the organization?",
				"Escalation chains", "Program meetings", "Shared roadmaps", "Clear team APIs and contracts", "Self-organizing networks of teams"),
			multiple("exp_delivery_2", Delivery, 0.9, "release_safety",
				"How do you limit the blast radius of a bad release?",
				"We don't", "Manual rollback", "Automated rollback", "Progressive delivery", "Automated analysis halts rollouts"),
			multiple("exp_auto_2", Automation, 0.9, "policy_as_code",
				"How are compliance and security rules enforced?",
				"Manual audits", "Checklists", "Pipeline scans", "Policy as code", "Continuous verified compliance"),
			multiple("exp_monitor_2", Monitoring, 0.9, "chaos_engineering",
				"How do you verify resilience before users find weaknesses?",
				"We don't", "Occasional failover tests", "Scheduled game days", "Automated chaos experiments", "Continuous chaos in production"),
			multiple("exp_culture_2", Culture, 0.9, "mentoring",
				"How does your team spread practices to other teams?",
				"It doesn't", "Informal help", "Internal talks", "Mentoring programs", "Communities of practice that others join"),
			multiple("exp_collab_2", Collaboration, 0.9, "customer_collaboration",
				"How directly do engineers learn from customers?",
				"Never", "Through support tickets", "Occasional user sessions", "Regular customer contact", "Engineers own customer outcomes"),
		},
	}
}
