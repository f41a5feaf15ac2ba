package config

// Vec3 is a plain x, y, z triple used in config files.
type Vec3 [3]float64

// ServerConfig contains authority loop and session settings
type ServerConfig struct {
	TickRate         int  `yaml:"tick_rate"`          // Replication ticks per second
	PhysicsHz        int  `yaml:"physics_hz"`         // Fixed physics steps per second
	MaxHolders       int  `yaml:"max_holders"`        // Seats per session
	CommandQueueSize int  `yaml:"command_queue_size"` // Buffered requests between router and loop
	AllowClientReset bool `yaml:"allow_client_reset"` // Host seat may request a level reset
}

// PhysicsConfig contains rigid-body world configuration values
type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity"`     // m/s^2 along -Y
	FloorY      float64 `yaml:"floor_y"`     // Height of the ground plane
	Restitution float64 `yaml:"restitution"` // Bounciness of world contacts (0..1)
	Friction    float64 `yaml:"friction"`    // Tangential velocity kept per ground contact (0..1)

	// Level units
	PixelsPerMeter float64 `yaml:"pixels_per_meter"` // TMX pixels per world meter
	CellSize       int     `yaml:"cell_size"`        // resolv broadphase cell size in meters

	// Defaults for free bodies
	Drag                     float64 `yaml:"drag"`
	AngularDrag              float64 `yaml:"angular_drag"`
	SolverIterations         int     `yaml:"solver_iterations"`
	SolverVelocityIterations int     `yaml:"solver_velocity_iterations"`

	// Continuous collision never splits a step into more pieces than this
	MaxSweepSteps int `yaml:"max_sweep_steps"`

	// Contacts slower than this (along the normal) are resting, not impacts
	RestingSpeed float64 `yaml:"resting_speed"`
}

// CarryConfig contains the constraint-follow configuration for held items
type CarryConfig struct {
	// Anchor drive
	Smoothing       float64 `yaml:"smoothing"`         // Fraction of the way to the target per step (0..1)
	MaxLinearSpeed  float64 `yaml:"max_linear_speed"`  // m/s the anchor may travel
	MaxAngularSpeed float64 `yaml:"max_angular_speed"` // rad/s the anchor may turn

	// Joint drive
	LinearSpring  float64 `yaml:"linear_spring"`
	LinearDamper  float64 `yaml:"linear_damper"`
	AngularSpring float64 `yaml:"angular_spring"`
	AngularDamper float64 `yaml:"angular_damper"`
	LinearLimit   float64 `yaml:"linear_limit"` // Free travel before the drive engages

	// Body tuning while held
	HeldDrag                     float64 `yaml:"held_drag"`
	HeldAngularDrag              float64 `yaml:"held_angular_drag"`
	HeldSolverIterations         int     `yaml:"held_solver_iterations"`
	HeldSolverVelocityIterations int     `yaml:"held_solver_velocity_iterations"`
}

// DamageConfig contains collision damage configuration values
type DamageConfig struct {
	DamagePerCollision float64 `yaml:"damage_per_collision"` // Damage at exactly CollisionThreshold
	CollisionThreshold float64 `yaml:"collision_threshold"`  // Minimum impact speed that deals damage
	FragileMultiplier  float64 `yaml:"fragile_multiplier"`
	CarriedMultiplier  float64 `yaml:"carried_multiplier"`
	ThrownMultiplier   float64 `yaml:"thrown_multiplier"`

	// Windows (seconds)
	ThrownWindow float64 `yaml:"thrown_window"`
	GraceWindow  float64 `yaml:"grace_window"`

	// Impacts slower than this inside the grace window are ignored
	GraceIgnoreBelow float64 `yaml:"grace_ignore_below"`

	RecoilStrength float64 `yaml:"recoil_strength"` // Impulse per unit impact speed while held
	DropFraction   float64 `yaml:"drop_fraction"`   // Share of the remaining durability that forces a drop
}

// HolderConfig contains holder (player) related configuration values
type HolderConfig struct {
	AttachOffset  Vec3    `yaml:"attach_offset"`  // Hands, in the holder's local frame
	ReachDistance float64 `yaml:"reach_distance"` // Max distance from attach point to item for a grab
	MaxThrowSpeed float64 `yaml:"max_throw_speed"`
}

// Global configuration instances
var Server ServerConfig
var Physics PhysicsConfig
var Carry CarryConfig
var Damage DamageConfig
var Holder HolderConfig

func init() {
	Server = ServerConfig{
		TickRate:         20,
		PhysicsHz:        60,
		MaxHolders:       4,
		CommandQueueSize: 256,
		AllowClientReset: true,
	}

	Physics = PhysicsConfig{
		Gravity:     9.81,
		FloorY:      0,
		Restitution: 0.2,
		Friction:    0.85,

		PixelsPerMeter: 32,
		CellSize:       1,

		Drag:                     0.05,
		AngularDrag:              0.05,
		SolverIterations:         6,
		SolverVelocityIterations: 1,

		MaxSweepSteps: 8,
		RestingSpeed:  0.25,
	}

	Carry = CarryConfig{
		Smoothing:       0.35,
		MaxLinearSpeed:  12.0,
		MaxAngularSpeed: 10.0,

		LinearSpring:  900.0,
		LinearDamper:  60.0,
		AngularSpring: 500.0,
		AngularDamper: 40.0,
		LinearLimit:   0.01,

		HeldDrag:                     1.0,
		HeldAngularDrag:              1.0,
		HeldSolverIterations:         20,
		HeldSolverVelocityIterations: 8,
	}

	Damage = DamageConfig{
		DamagePerCollision: 10.0,
		CollisionThreshold: 2.0,
		FragileMultiplier:  2.0,
		CarriedMultiplier:  0.5,
		ThrownMultiplier:   1.5,

		ThrownWindow: 2.0,
		GraceWindow:  0.5,

		GraceIgnoreBelow: 5.0,

		RecoilStrength: 0.15,
		DropFraction:   0.5,
	}

	Holder = HolderConfig{
		AttachOffset:  Vec3{0, 1.1, 0.7},
		ReachDistance: 2.5,
		MaxThrowSpeed: 15.0,
	}
}
